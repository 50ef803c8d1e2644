package redmine

import (
	"context"
	"fmt"
	"path/filepath"
)

// Publish uploads filePath and attaches it to project. meta.Token is ignored
// and meta.Filename defaults to the file's base name.
//
// The two steps are not transactional: when the attach fails the returned
// token is still set and refers to an orphaned upload on the server.
func Publish(ctx context.Context, uploader ContentUploader, attacher FileAttacher, project, filePath string, meta FileAttachmentRequest, progress ProgressFunc) (UploadToken, error) {
	token, err := uploader.Upload(ctx, filePath, progress)
	if err != nil {
		return "", err
	}

	meta.Token = token
	if meta.Filename == "" {
		meta.Filename = filepath.Base(filePath)
	}

	if err := attacher.Attach(ctx, project, meta); err != nil {
		return token, fmt.Errorf("upload %s left unattached: %w", token, err)
	}
	return token, nil
}
