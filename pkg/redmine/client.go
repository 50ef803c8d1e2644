package redmine

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "redmine-upload/pkg/errors"
	"redmine-upload/pkg/logger"
)

const (
	headerAPIKey      = "X-Redmine-API-Key"
	headerContentType = "Content-Type"

	contentTypeOctetStream = "application/octet-stream"
	contentTypeJSON        = "application/json"

	// DefaultTimeout bounds a whole request, including the upload body.
	DefaultTimeout = 5 * time.Minute

	// maxResponseBytes caps how much of a response body is buffered.
	maxResponseBytes = 1 << 20
)

// Client talks to the Redmine REST API for one connection.
type Client struct {
	httpClient *http.Client
	conn       ConnectionParams
	baseURL    string
	logger     *logger.Logger

	timeout    time.Duration
	hasTimeout bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is never
// modified; WithTimeout applies to a copy of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

var (
	_ ContentUploader = (*Client)(nil)
	_ FileAttacher    = (*Client)(nil)
)

// NewClient validates the host and returns a client bound to conn.
func NewClient(conn ConnectionParams, opts ...Option) (*Client, error) {
	baseURL, err := normalizeHost(conn.Host)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		conn:       conn,
		baseURL:    baseURL,
		logger:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.logger = c.logger.WithFields("host", c.baseURL, "auth", conn.authMode())

	return c, nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("%w: redmine host is required", errs.ErrInvalidRequest)
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redmine host %q: %v", errs.ErrInvalidRequest, host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: redmine host %q must use http or https", errs.ErrInvalidRequest, host)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: redmine host %q has no hostname", errs.ErrInvalidRequest, host)
	}
	return strings.TrimRight(host, "/"), nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// do sends req with credentials applied and returns the status and a bounded
// copy of the body. The response body is always closed.
func (c *Client) do(req *http.Request, op string) (*http.Response, []byte, error) {
	c.conn.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Op: op, URL: req.URL.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, &NetworkError{Op: op, URL: req.URL.Redacted(), Err: fmt.Errorf("read response: %w", err)}
	}
	return resp, body, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
