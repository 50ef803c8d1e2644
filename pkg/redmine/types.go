package redmine

import (
	"context"
	"net/http"
)

// ConnectionParams identifies a Redmine instance and the credentials used
// against it. When APIKey is set it takes precedence over Username/Password.
type ConnectionParams struct {
	Host     string
	APIKey   string
	Username string
	Password string
}

// authorize applies the credential policy to an outgoing request: API key
// first, then basic auth when both parts are present, otherwise nothing.
func (p ConnectionParams) authorize(req *http.Request) {
	switch {
	case p.APIKey != "":
		req.Header.Set(headerAPIKey, p.APIKey)
	case p.Username != "" && p.Password != "":
		req.SetBasicAuth(p.Username, p.Password)
	}
}

// authMode names the credential that authorize would use, for logging.
func (p ConnectionParams) authMode() string {
	switch {
	case p.APIKey != "":
		return "api-key"
	case p.Username != "" && p.Password != "":
		return "basic"
	default:
		return "none"
	}
}

// UploadToken is the opaque value returned by POST /uploads.json.
type UploadToken string

func (t UploadToken) String() string {
	return string(t)
}

// FileAttachmentRequest binds an uploaded blob to a project's Files section.
type FileAttachmentRequest struct {
	Token       UploadToken
	Filename    string
	VersionID   string
	Description string
}

// ProgressFunc observes an upload. written grows monotonically up to total.
type ProgressFunc func(written, total int64)

// ContentUploader streams a local file to the server and returns its token.
type ContentUploader interface {
	Upload(ctx context.Context, filePath string, progress ProgressFunc) (UploadToken, error)
}

// FileAttacher posts file metadata for a previously uploaded token.
type FileAttacher interface {
	Attach(ctx context.Context, project string, req FileAttachmentRequest) error
}

type uploadResponse struct {
	Upload *struct {
		Token string `json:"token"`
	} `json:"upload"`
}

type fileAttachment struct {
	Token       string `json:"token"`
	Filename    string `json:"filename,omitempty"`
	VersionID   string `json:"version_id,omitempty"`
	Description string `json:"description,omitempty"`
}

type attachBody struct {
	File fileAttachment `json:"file"`
}

type errorBody struct {
	Errors []string `json:"errors"`
}
