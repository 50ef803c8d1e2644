package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	errs "redmine-upload/pkg/errors"
)

// Attach posts req to POST /projects/{project}/files.json. Optional fields are
// only sent when non-empty.
func (c *Client) Attach(ctx context.Context, project string, req FileAttachmentRequest) error {
	project = strings.TrimSpace(project)
	if project == "" {
		return fmt.Errorf("%w: project is required", errs.ErrInvalidRequest)
	}
	if req.Token == "" {
		return fmt.Errorf("%w: upload token is required", errs.ErrInvalidRequest)
	}

	payload, err := json.Marshal(attachBody{File: fileAttachment{
		Token:       string(req.Token),
		Filename:    req.Filename,
		VersionID:   req.VersionID,
		Description: req.Description,
	}})
	if err != nil {
		return fmt.Errorf("encode attach request: %w", err)
	}

	url := c.endpoint("projects", project, "files.json")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build attach request: %w", err)
	}
	httpReq.Header.Set(headerContentType, contentTypeJSON)

	log := c.logger.WithFields("project", project, "token", req.Token)
	log.Debug("posting file metadata", "body", string(payload))

	resp, body, err := c.do(httpReq, "attach")
	if err != nil {
		log.Error("file attach failed", "error", err)
		return err
	}

	if !isSuccess(resp.StatusCode) {
		attachErr := &AttachError{
			Project:    project,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Messages:   serverMessages(body),
		}
		log.Error("file attach rejected", "status", resp.StatusCode, "error", attachErr)
		return attachErr
	}

	log.Info("file attached", "filename", req.Filename)
	return nil
}
