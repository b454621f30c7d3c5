package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	apihttp "github.com/GriffinCanCode/WebIDE/backend/internal/api/http"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/preview"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/resilience"
)

// Snapshot is the decoded form of a workspace snapshot.
type Snapshot struct {
	Tree          []workspace.TreeRow  `json:"tree"`
	OpenTabs      []string             `json:"open_tabs"`
	Tabs          []workspace.TabView  `json:"tabs"`
	ActiveTab     string               `json:"active_tab"`
	ActiveContent string               `json:"active_content"`
	Status        *workspace.StatusBar `json:"status,omitempty"`
}

// Created is the result of creating a workspace.
type Created struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}

// Listing is the result of listing workspaces.
type Listing struct {
	Workspaces []session.Info `json:"workspaces"`
	Stats      session.Stats  `json:"stats"`
}

// Health is the server health report.
type Health struct {
	Status     string        `json:"status"`
	Uptime     string        `json:"uptime"`
	Workspaces session.Stats `json:"workspaces"`
}

// APIError is a non-2xx answer from the server. It unwraps to the domain
// error behind its code, so errors.Is(err, workspace.ErrNotOpen) works on
// the client side too.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webide api: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return apihttp.ErrorForCode(e.Code)
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	RetryCount int
	// RateLimit caps requests per second. Zero is unlimited.
	RateLimit float64
	Breaker   resilience.Settings
	// HTTPClient overrides the underlying transport, mostly for tests.
	HTTPClient *http.Client
}

// DefaultOptions returns the options New uses for zero fields.
func DefaultOptions() Options {
	return Options{
		Timeout:    30 * time.Second,
		RetryCount: 2,
		Breaker: resilience.Settings{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		},
	}
}

// Client talks to a workspace server over its REST API.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.Breaker.Timeout <= 0 {
		opts.Breaker.Timeout = def.Breaker.Timeout
	}
	if opts.Breaker.IsSuccessful == nil {
		opts.Breaker.IsSuccessful = healthyRemote
	}

	var r *resty.Client
	if opts.HTTPClient != nil {
		r = resty.NewWithClient(opts.HTTPClient)
	} else {
		r = resty.New()
	}
	r.SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryable).
		SetHeader("User-Agent", "webide-client/"+apihttp.Version).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		resty:   r,
		limiter: limiter,
		breaker: resilience.New("webide-api", opts.Breaker),
	}
}

// healthyRemote counts client errors as successes: the server answered.
func healthyRemote(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return err == nil
}

// retryable retries gateway failures. 503 means the session limit was
// hit and is not retried.
func retryable(resp *resty.Response, err error) bool {
	if resp == nil {
		return false
	}
	switch resp.StatusCode() {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return c.breaker.Do(ctx, func() error {
		req := c.resty.R().SetContext(ctx).SetError(&APIError{})
		if body != nil {
			req.SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.IsError() {
			apiErr, ok := resp.Error().(*APIError)
			if !ok || apiErr.Code == "" {
				apiErr = &APIError{Code: "internal", Message: resp.Status()}
			}
			apiErr.Status = resp.StatusCode()
			return apiErr
		}
		return nil
	})
}

func workspacePath(id string, parts ...string) string {
	p := "/workspaces/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, resty.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the live workspaces and manager stats.
func (c *Client) List(ctx context.Context) (*Listing, error) {
	var out Listing
	if err := c.do(ctx, resty.MethodGet, "/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a workspace from the named template. An empty name uses
// the server default.
func (c *Client) Create(ctx context.Context, template string) (*Created, error) {
	var out Created
	if err := c.do(ctx, resty.MethodPost, "/workspaces", apihttp.CreateRequest{Template: template}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the current snapshot of a workspace.
func (c *Client) Get(ctx context.Context, id string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodGet, workspacePath(id), nil)
}

// Delete removes a workspace.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, resty.MethodDelete, workspacePath(id), nil, nil)
}

// Select opens path in a tab and makes it active.
func (c *Client) Select(ctx context.Context, id, path string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPost, workspacePath(id, "select"), apihttp.PathRequest{Path: path})
}

// Activate switches to an already open tab.
func (c *Client) Activate(ctx context.Context, id, path string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPost, workspacePath(id, "activate"), apihttp.PathRequest{Path: path})
}

// CloseTab closes the tab for path.
func (c *Client) CloseTab(ctx context.Context, id, path string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPost, workspacePath(id, "close"), apihttp.PathRequest{Path: path})
}

// Toggle expands or collapses a folder.
func (c *Client) Toggle(ctx context.Context, id, path string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPost, workspacePath(id, "toggle"), apihttp.PathRequest{Path: path})
}

// Edit replaces the content of the active tab.
func (c *Client) Edit(ctx context.Context, id, content string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPut, workspacePath(id, "content"), apihttp.ContentRequest{Content: content})
}

// Refresh rebuilds the tree from the workspace template.
func (c *Client) Refresh(ctx context.Context, id string) (*Snapshot, error) {
	return c.snapshot(ctx, resty.MethodPost, workspacePath(id, "refresh"), nil)
}

// Find lists files matching a glob pattern.
func (c *Client) Find(ctx context.Context, id, pattern string) ([]string, error) {
	var out apihttp.FindResponse
	path := workspacePath(id, "find") + "?pattern=" + url.QueryEscape(pattern)
	if err := c.do(ctx, resty.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// Preview renders the active tab.
func (c *Client) Preview(ctx context.Context, id string) (*preview.Preview, error) {
	var out preview.Preview
	if err := c.do(ctx, resty.MethodGet, workspacePath(id, "preview"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) snapshot(ctx context.Context, method, path string, body any) (*Snapshot, error) {
	var out Snapshot
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
