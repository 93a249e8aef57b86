// Package agent implements types.Client over the activities REST API.
//
// Endpoints, relative to the configured base URL:
//
//	GET    /activities       list
//	GET    /activities/{id}  details
//	POST   /activities       create
//	PUT    /activities/{id}  update
//	DELETE /activities/{id}  delete
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/activities/pkg/types"
)

const activitiesPath = "/activities"

// maxErrorBody caps how much of a failed response body is kept in StatusError.
const maxErrorBody = 4 << 10

// Client talks to the activities API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ types.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a Client from cfg. The config is validated first.
func New(cfg types.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agent config: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatusError reports a non-2xx response other than 404.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// List implements types.Client.
func (c *Client) List(ctx context.Context) ([]types.Activity, error) {
	var out []types.Activity
	if err := c.do(ctx, http.MethodGet, activitiesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Details implements types.Client.
func (c *Client) Details(ctx context.Context, id string) (types.Activity, error) {
	path, err := activityPath(id)
	if err != nil {
		return types.Activity{}, err
	}
	var out types.Activity
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return types.Activity{}, err
	}
	return out, nil
}

// Create implements types.Client.
func (c *Client) Create(ctx context.Context, activity types.Activity) error {
	if err := types.CheckID(activity.ID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, activitiesPath, activity, nil)
}

// Update implements types.Client.
func (c *Client) Update(ctx context.Context, activity types.Activity) error {
	path, err := activityPath(activity.ID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, activity, nil)
}

// Delete implements types.Client.
func (c *Client) Delete(ctx context.Context, id string) error {
	path, err := activityPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func activityPath(id string) (string, error) {
	if err := types.CheckID(id); err != nil {
		return "", err
	}
	return activitiesPath + "/" + url.PathEscape(id), nil
}

// do sends one request. A non-nil in is encoded as the JSON body; a non-nil
// out receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, types.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
