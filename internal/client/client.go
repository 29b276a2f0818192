// Package client is a typed Go client for the student records API.
//
// Every call decodes the response envelope. A success:false envelope is
// returned as *APIError carrying the server's message; transport failures
// are returned wrapped. Nothing is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultBaseURL matches the address in config/local.yaml.
const DefaultBaseURL = "http://localhost:8082"

// APIError is a failure reported by the server in the envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// envelope is response.Response with the payload left raw until the
// caller's type is known.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

// Client talks to one API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8082".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListStudents returns the students matching f.
func (c *Client) ListStudents(ctx context.Context, f types.Filter) ([]types.Student, error) {
	path := "/api/students"
	if q := f.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var students []types.Student
	if err := c.do(ctx, http.MethodGet, path, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) GetStudent(ctx context.Context, id int64) (types.Student, error) {
	var st types.Student
	err := c.do(ctx, http.MethodGet, studentPath(id), nil, &st)
	return st, err
}

// CreateStudent returns the stored record (with id and createdAt).
func (c *Client) CreateStudent(ctx context.Context, in types.NewStudent) (types.Student, error) {
	var st types.Student
	err := c.do(ctx, http.MethodPost, "/api/students", in, &st)
	return st, err
}

// UpdateStudent sends only the non-nil fields of p.
func (c *Client) UpdateStudent(ctx context.Context, id int64, p types.StudentPatch) (types.Student, error) {
	var st types.Student
	err := c.do(ctx, http.MethodPut, studentPath(id), p, &st)
	return st, err
}

// DeleteStudent returns the removed record.
func (c *Client) DeleteStudent(ctx context.Context, id int64) (types.Student, error) {
	var st types.Student
	err := c.do(ctx, http.MethodDelete, studentPath(id), nil, &st)
	return st, err
}

func (c *Client) Statistics(ctx context.Context) (types.Statistics, error) {
	var stats types.Statistics
	err := c.do(ctx, http.MethodGet, "/api/statistics", nil, &stats)
	return stats, err
}

func studentPath(id int64) string {
	return "/api/students/" + url.PathEscape(strconv.FormatInt(id, 10))
}

// do sends body (JSON-encoded when non-nil), decodes the envelope and
// unmarshals its data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}

	return nil
}
