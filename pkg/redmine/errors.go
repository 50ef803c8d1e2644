package redmine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	errs "redmine-upload/pkg/errors"
)

// FileNotFoundError reports a local file that could not be opened for upload.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

func (e *FileNotFoundError) Is(target error) bool { return target == errs.ErrFileNotFound }

// UploadError reports a non-2xx answer to POST /uploads.json.
type UploadError struct {
	StatusCode int
	Status     string
	Messages   []string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s", describeStatus(e.Status, e.Messages))
}

func (e *UploadError) Is(target error) bool { return target == errs.ErrUploadRejected }

// AttachError reports a non-2xx answer to POST /projects/{project}/files.json.
type AttachError struct {
	Project    string
	StatusCode int
	Status     string
	Messages   []string
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach to project %s failed: %s", e.Project, describeStatus(e.Status, e.Messages))
}

func (e *AttachError) Is(target error) bool { return target == errs.ErrAttachRejected }

// MalformedResponseError reports a successful status with an unusable body.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == errs.ErrMalformedResponse }

// NetworkError reports a request that produced no HTTP response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == errs.ErrNetwork }

// StatusCode extracts the HTTP status carried by an upload or attach failure.
func StatusCode(err error) (int, bool) {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.StatusCode, true
	}
	var attachErr *AttachError
	if errors.As(err, &attachErr) {
		return attachErr.StatusCode, true
	}
	return 0, false
}

func describeStatus(status string, messages []string) string {
	if len(messages) == 0 {
		return status
	}
	return fmt.Sprintf("%s: %s", status, strings.Join(messages, "; "))
}

// serverMessages pulls Redmine's {"errors": [...]} list out of a response
// body, falling back to the raw body text.
func serverMessages(body []byte) []string {
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		return payload.Errors
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return []string{text}
	}
	return nil
}
