package redmine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var errNotRegularFile = errors.New("not a regular file")

// Upload streams filePath to POST /uploads.json and returns the token the
// server issued for it. progress may be nil.
func (c *Client) Upload(ctx context.Context, filePath string, progress ProgressFunc) (UploadToken, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", &FileNotFoundError{Path: filePath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &FileNotFoundError{Path: filePath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &FileNotFoundError{Path: filePath, Err: errNotRegularFile}
	}
	size := info.Size()

	url := c.endpoint("uploads.json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, newProgressReader(f, size, progress))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeOctetStream)
	req.ContentLength = size
	if size == 0 {
		// a zero ContentLength with a non-nil body would be sent chunked
		req.Body = http.NoBody
		if progress != nil {
			progress(0, 0)
		}
	}

	log := c.logger.WithFields("file", filepath.Base(filePath), "size", size)
	log.Info("starting content upload", "url", url)
	start := time.Now()

	resp, body, err := c.do(req, "upload")
	if err != nil {
		log.Error("content upload failed", "error", err)
		return "", err
	}

	if !isSuccess(resp.StatusCode) {
		uploadErr := &UploadError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Messages:   serverMessages(body),
		}
		log.Error("content upload rejected", "status", resp.StatusCode, "error", uploadErr)
		return "", uploadErr
	}

	var payload uploadResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &MalformedResponseError{Body: string(body), Err: err}
	}
	if payload.Upload == nil || payload.Upload.Token == "" {
		return "", &MalformedResponseError{Body: string(body), Err: errors.New("upload.token missing")}
	}

	token := UploadToken(payload.Upload.Token)
	log.Info("content uploaded", "token", token, "duration", time.Since(start))
	return token, nil
}
