// Package client talks to the task API and holds the view state shared by
// the desktop and command-line clients.
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

	"treetodo/pkg/envelope"
	"treetodo/pkg/task"
)

// APIError is a response the server answered with success=false or a
// non-2xx status.
type APIError struct {
	Status int
	Errors []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 && e.Errors[0] != "" {
		return e.Errors[0]
	}
	return fmt.Sprintf("Request failed with status %d", e.Status)
}

// NetworkError wraps a transport failure: the request never produced a
// response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// Message returns the text a user should see for err, where action names
// what was being attempted ("create task").
func Message(err error, action string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Network error: failed to " + action
	}
	return err.Error()
}

// Client calls the task API. It never retries.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the API rooted at base (e.g.
// "http://localhost:8080/").
func New(base string, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base %q must be an absolute URL", base)
	}
	c := &Client{base: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Base returns the API base URL.
func (c *Client) Base() string {
	return c.base.String()
}

// List returns the root tasks with their subtrees. An empty priority
// means all priorities.
func (c *Client) List(ctx context.Context, includeCompleted bool, priority string) ([]*task.Task, error) {
	q := url.Values{}
	q.Set("includeCompleted", strconv.FormatBool(includeCompleted))
	if priority != "" {
		q.Set("priority", priority)
	}
	tasks, err := call[[]*task.Task](ctx, c, http.MethodGet, "api/tasks?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

// Get returns the subtree rooted at id.
func (c *Client) Get(ctx context.Context, id int64) (*task.Task, error) {
	return call[*task.Task](ctx, c, http.MethodGet, taskPath(id), nil)
}

// Create adds a task.
func (c *Client) Create(ctx context.Context, in task.CreateInput) (*task.Task, error) {
	return call[*task.Task](ctx, c, http.MethodPost, "api/tasks", in)
}

// Update replaces the mutable fields of id.
func (c *Client) Update(ctx context.Context, id int64, in task.UpdateInput) (*task.Task, error) {
	return call[*task.Task](ctx, c, http.MethodPut, taskPath(id), in)
}

// Toggle flips the completion flag of id.
func (c *Client) Toggle(ctx context.Context, id int64) (*task.Task, error) {
	return call[*task.Task](ctx, c, http.MethodPatch, taskPath(id)+"/toggle", nil)
}

// Delete removes id and its subtree.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := call[any](ctx, c, http.MethodDelete, taskPath(id), nil)
	return err
}

// Stats returns task counts.
func (c *Client) Stats(ctx context.Context) (task.Stats, error) {
	return call[task.Stats](ctx, c, http.MethodGet, "api/status", nil)
}

func taskPath(id int64) string {
	return "api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope.Response[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Errors = env.Errors
		}
		return zero, apiErr
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return zero, nil
	}

	var env envelope.Response[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	if !env.Success {
		return zero, &APIError{Status: resp.StatusCode, Errors: env.Errors}
	}
	return env.Data, nil
}
