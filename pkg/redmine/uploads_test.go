package redmine

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "redmine-upload/pkg/errors"
)

func TestUpload_ReturnsToken(t *testing.T) {
	fake, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"7167.ed1ccdb093229ca1bd0b043618d88743"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL, APIKey: "key"})

	content := bytes.Repeat([]byte("release"), 4096)
	token, err := c.Upload(context.Background(), writeTempFile(t, "app.apk", content), nil)

	require.NoError(t, err)
	assert.Equal(t, UploadToken("7167.ed1ccdb093229ca1bd0b043618d88743"), token)

	got := fake.last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/uploads.json", got.Path)
	assert.Equal(t, "application/octet-stream", got.Header.Get("Content-Type"))
	assert.Equal(t, int64(len(content)), got.ContentLength)
	assert.False(t, got.Chunked)
	assert.Equal(t, content, got.Body)
}

func TestUpload_ZeroByteFile(t *testing.T) {
	fake, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"T"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	var calls [][2]int64
	token, err := c.Upload(context.Background(), writeTempFile(t, "empty.txt", nil), func(written, total int64) {
		calls = append(calls, [2]int64{written, total})
	})

	require.NoError(t, err)
	assert.Equal(t, UploadToken("T"), token)

	got := fake.last(t)
	assert.Equal(t, int64(0), got.ContentLength)
	assert.False(t, got.Chunked)
	assert.Empty(t, got.Body)
	assert.Equal(t, [][2]int64{{0, 0}}, calls)
}

func TestUpload_ReportsProgress(t *testing.T) {
	_, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"T"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	content := bytes.Repeat([]byte{0xAB}, 256*1024)
	var (
		mu        sync.Mutex
		last      int64
		monotonic = true
	)
	_, err := c.Upload(context.Background(), writeTempFile(t, "big.bin", content), func(written, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if written < last || total != int64(len(content)) {
			monotonic = false
		}
		last = written
	})

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, monotonic, "progress must grow towards the file size")
	assert.Equal(t, int64(len(content)), last)
}

func TestUpload_UnprocessableEntity(t *testing.T) {
	_, srv := newFakeRedmine(t, http.StatusUnprocessableEntity, `{"errors":["This file cannot be uploaded because it exceeds the maximum allowed file size"]}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	token, err := c.Upload(context.Background(), writeTempFile(t, "a.bin", []byte("data")), nil)

	require.Error(t, err)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, errs.ErrUploadRejected)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusUnprocessableEntity, uploadErr.StatusCode)
	assert.Equal(t, []string{"This file cannot be uploaded because it exceeds the maximum allowed file size"}, uploadErr.Messages)
	assert.Contains(t, err.Error(), "422")
}

func TestUpload_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing token", body: `{"upload":{}}`},
		{name: "missing upload", body: `{"id":1}`},
		{name: "not json", body: `<html>ok</html>`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newFakeRedmine(t, http.StatusCreated, tt.body)
			c := newTestClient(t, ConnectionParams{Host: srv.URL})

			_, err := c.Upload(context.Background(), writeTempFile(t, "a.bin", []byte("data")), nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrMalformedResponse)
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.body, malformed.Body)
		})
	}
}

func TestUpload_FileNotFound(t *testing.T) {
	fake, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"T"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	missing := filepath.Join(t.TempDir(), "missing.apk")
	_, err := c.Upload(context.Background(), missing, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrFileNotFound)
	var notFound *FileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.Path)
	assert.Equal(t, 0, fake.count(), "nothing should reach the server")
}

func TestUpload_DirectoryRejected(t *testing.T) {
	fake, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"T"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	_, err := c.Upload(context.Background(), t.TempDir(), nil)

	assert.ErrorIs(t, err, errs.ErrFileNotFound)
	assert.Equal(t, 0, fake.count())
}

func TestUpload_NetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := newTestClient(t, ConnectionParams{Host: "http://" + addr})
	_, err = c.Upload(context.Background(), writeTempFile(t, "a.bin", []byte("data")), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNetwork)
	assert.True(t, errs.IsTransportError(err))
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "upload", netErr.Op)
}

func TestUpload_CancelledContext(t *testing.T) {
	_, srv := newFakeRedmine(t, http.StatusCreated, `{"upload":{"token":"T"}}`)
	c := newTestClient(t, ConnectionParams{Host: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Upload(ctx, writeTempFile(t, "a.bin", []byte("data")), nil)

	assert.ErrorIs(t, err, errs.ErrNetwork)
	assert.True(t, errors.Is(err, context.Canceled))
}
