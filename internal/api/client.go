// Package api is an HTTP client for the tasks REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/dori/tasks/internal/model"
)

// RequestIDHeader carries a per-request id for log correlation
const RequestIDHeader = "X-Request-ID"

// Client talks to the tasks REST API. Requests have no timeout and are
// never retried.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL (e.g. http://127.0.0.1:5000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type taskBody struct {
	Title string `json:"title"`
}

type commentBody struct {
	Text string `json:"text"`
}

type taskEnvelope struct {
	Task *model.Task `json:"task"`
}

type commentEnvelope struct {
	Comment *model.Comment `json:"comment"`
}

// ListTasks fetches the full task collection in server order
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"api", "tasks"}, nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []model.Task{}
	}
	return out.Tasks, nil
}

// CreateTask creates a task and returns it with its server-assigned id
func (c *Client) CreateTask(ctx context.Context, title string) (model.Task, error) {
	var out taskEnvelope
	path := []string{"api", "tasks"}
	if err := c.do(ctx, http.MethodPost, path, taskBody{Title: title}, &out); err != nil {
		return model.Task{}, err
	}
	if out.Task == nil {
		return model.Task{}, c.missingField(http.MethodPost, path, "task")
	}
	return *out.Task, nil
}

// UpdateTask sets a task's title and returns the stored task
func (c *Client) UpdateTask(ctx context.Context, id int64, title string) (model.Task, error) {
	var out taskEnvelope
	path := []string{"api", "tasks", itoa(id)}
	if err := c.do(ctx, http.MethodPut, path, taskBody{Title: title}, &out); err != nil {
		return model.Task{}, err
	}
	if out.Task == nil {
		return model.Task{}, c.missingField(http.MethodPut, path, "task")
	}
	return *out.Task, nil
}

// DeleteTask deletes a task. The response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, []string{"api", "tasks", itoa(id)}, nil, nil)
}

// ListComments fetches the comments of a task
func (c *Client) ListComments(ctx context.Context, taskID int64) ([]model.Comment, error) {
	var out struct {
		Comments []model.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"api", "tasks", itoa(taskID), "comments"}, nil, &out); err != nil {
		return nil, err
	}
	if out.Comments == nil {
		out.Comments = []model.Comment{}
	}
	return out.Comments, nil
}

// AddComment attaches a comment to a task
func (c *Client) AddComment(ctx context.Context, taskID int64, text string) (model.Comment, error) {
	var out commentEnvelope
	path := []string{"api", "tasks", itoa(taskID), "comments"}
	if err := c.do(ctx, http.MethodPost, path, commentBody{Text: text}, &out); err != nil {
		return model.Comment{}, err
	}
	if out.Comment == nil {
		return model.Comment{}, c.missingField(http.MethodPost, path, "comment")
	}
	return *out.Comment, nil
}

// UpdateComment changes a comment's text
func (c *Client) UpdateComment(ctx context.Context, id int64, text string) (model.Comment, error) {
	var out commentEnvelope
	path := []string{"api", "comments", itoa(id)}
	if err := c.do(ctx, http.MethodPut, path, commentBody{Text: text}, &out); err != nil {
		return model.Comment{}, err
	}
	if out.Comment == nil {
		return model.Comment{}, c.missingField(http.MethodPut, path, "comment")
	}
	return *out.Comment, nil
}

// DeleteComment deletes a comment
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, []string{"api", "comments", itoa(id)}, nil, nil)
}

// do sends one request. Any failure comes back as a *NetworkError.
func (c *Client) do(ctx context.Context, method string, path []string, body, out any) error {
	target := c.base.JoinPath(path...).String()
	fail := func(status int, err error) error {
		return &NetworkError{Method: method, URL: target, StatusCode: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fail(0, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	c.logger.Debug("request", "method", method, "url", target, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("response", "method", method, "url", target, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, serverError(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *Client) missingField(method string, path []string, field string) error {
	return &NetworkError{
		Method: method,
		URL:    c.base.JoinPath(path...).String(),
		Err:    fmt.Errorf("response has no %q field", field),
	}
}

// serverError extracts the {"error": "..."} message the server sends with
// failures, falling back to a generic message.
func serverError(r io.Reader) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	return errors.New("request failed")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
