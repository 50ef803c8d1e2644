package redmine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "redmine-upload/pkg/errors"
)

type stubUploader struct {
	token UploadToken
	err   error
	path  string
}

func (s *stubUploader) Upload(_ context.Context, filePath string, _ ProgressFunc) (UploadToken, error) {
	s.path = filePath
	return s.token, s.err
}

type stubAttacher struct {
	err     error
	calls   int
	project string
	req     FileAttachmentRequest
}

func (s *stubAttacher) Attach(_ context.Context, project string, req FileAttachmentRequest) error {
	s.calls++
	s.project = project
	s.req = req
	return s.err
}

func TestPublish_DefaultsFilename(t *testing.T) {
	up := &stubUploader{token: "T"}
	at := &stubAttacher{}

	token, err := Publish(context.Background(), up, at, "mobile-app", "/builds/out/app-release.apk",
		FileAttachmentRequest{Token: "ignored", VersionID: "3"}, nil)

	require.NoError(t, err)
	assert.Equal(t, UploadToken("T"), token)
	assert.Equal(t, "/builds/out/app-release.apk", up.path)
	assert.Equal(t, "mobile-app", at.project)
	assert.Equal(t, FileAttachmentRequest{Token: "T", Filename: "app-release.apk", VersionID: "3"}, at.req)
}

func TestPublish_KeepsExplicitFilename(t *testing.T) {
	at := &stubAttacher{}

	_, err := Publish(context.Background(), &stubUploader{token: "T"}, at, "p", "/tmp/a.ipa",
		FileAttachmentRequest{Filename: "MyApp-1.2.ipa"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "MyApp-1.2.ipa", at.req.Filename)
}

func TestPublish_UploadFailureSkipsAttach(t *testing.T) {
	at := &stubAttacher{}
	up := &stubUploader{err: &UploadError{StatusCode: 413, Status: "413 Request Entity Too Large"}}

	token, err := Publish(context.Background(), up, at, "p", "/tmp/a.ipa", FileAttachmentRequest{}, nil)

	assert.Empty(t, token)
	assert.ErrorIs(t, err, errs.ErrUploadRejected)
	assert.Equal(t, 0, at.calls)
}

func TestPublish_AttachFailureReturnsOrphanToken(t *testing.T) {
	at := &stubAttacher{err: &AttachError{Project: "p", StatusCode: 403, Status: "403 Forbidden"}}

	token, err := Publish(context.Background(), &stubUploader{token: "T"}, at, "p", "/tmp/a.ipa", FileAttachmentRequest{}, nil)

	assert.Equal(t, UploadToken("T"), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrAttachRejected)
	code, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, 403, code)
	assert.False(t, errors.Is(err, errs.ErrUploadRejected))
}
