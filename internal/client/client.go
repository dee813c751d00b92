// ABOUTME: HTTP client for the YouTube summarizer backend API
// ABOUTME: Attaches the session token, intercepts 401s, and maps errors for CLI and TUI use

package client

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
	"sync"
	"time"

	"github.com/markalston/yt-summarizer/internal/cache"
	"github.com/markalston/yt-summarizer/internal/middleware"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/store"
)

const (
	DefaultTimeout  = 10 * time.Minute
	DefaultCacheTTL = 5 * time.Minute
)

// Client is the API client for the summarizer backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	summaries  *cache.Cache[int64, models.SummaryRecord]

	mu             sync.RWMutex
	tokens         middleware.TokenSource
	onUnauthorized func(token string)
	store          store.Store
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	cacheTTL  time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
	store     store.Store
}

// WithTimeout sets the per-request timeout. Summary generation can take minutes.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithCacheTTL sets how long fetched summaries are reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(o *clientOptions) { o.cacheTTL = d }
}

// WithTransport replaces the base transport under the middleware chain
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithLogger sets the logger used for request logging
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithStore gives the client a session store. Until SetTokenSource is called
// the token is read from it, and a 401 with no handler clears it.
func WithStore(s store.Store) Option {
	return func(o *clientOptions) { o.store = s }
}

// New creates a new API client with the given base URL (e.g. http://localhost:8080/api)
func New(baseURL string, opts ...Option) *Client {
	o := clientOptions{timeout: DefaultTimeout, cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		baseURL:   baseURL,
		summaries: cache.New[int64, models.SummaryRecord](o.cacheTTL),
		store:     o.store,
	}
	c.httpClient = &http.Client{
		Timeout: o.timeout,
		Transport: middleware.Chain(o.transport,
			middleware.Logging(o.logger),
			middleware.Unauthorized(c.handleUnauthorized),
			middleware.Bearer(middleware.TokenFunc(c.Token)),
		),
	}
	return c
}

// BaseURL returns the backend address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource makes src the authority for the bearer token
func (c *Client) SetTokenSource(src middleware.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = src
}

// OnUnauthorized registers the handler invoked for every 401 response
func (c *Client) OnUnauthorized(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Token returns the token that will be attached to the next request
func (c *Client) Token() string {
	c.mu.RLock()
	src, st := c.tokens, c.store
	c.mu.RUnlock()

	if src != nil {
		return src.Token()
	}
	if st != nil {
		token, _, err := st.Read()
		if err == nil {
			return token
		}
	}
	return ""
}

// ResetCache drops every cached response. Called when the session ends.
func (c *Client) ResetCache() {
	c.summaries.Reset()
}

// Close stops background cache maintenance
func (c *Client) Close() {
	c.summaries.Stop()
}

func (c *Client) handleUnauthorized(token string) {
	c.summaries.Reset()

	c.mu.RLock()
	fn, st := c.onUnauthorized, c.store
	c.mu.RUnlock()

	if fn != nil {
		fn(token)
		return
	}
	if st != nil {
		if err := st.Clear(); err != nil {
			slog.Warn("failed to clear session after 401", "error", err)
		}
	}
}

// --- Auth ---

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginWithGoogle forwards an identity-provider credential verbatim to POST /auth/google
func (c *Client) LoginWithGoogle(ctx context.Context, credential string) (*models.GoogleAuthResponse, error) {
	body := struct {
		Token string `json:"token"`
	}{Token: credential}

	var resp models.GoogleAuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", body, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser calls GET /auth/me
func (c *Client) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckAuth calls GET /auth/check, which answers even without a token
func (c *Client) CheckAuth(ctx context.Context) (*models.AuthCheck, error) {
	var check models.AuthCheck
	if err := c.do(ctx, http.MethodGet, "/auth/check", nil, false, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// GoogleStatus calls GET /auth/google/status
func (c *Client) GoogleStatus(ctx context.Context) (*models.GoogleStatus, error) {
	var status models.GoogleStatus
	if err := c.do(ctx, http.MethodGet, "/auth/google/status", nil, false, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// --- Summaries ---

// GenerateSummary calls POST /summaries/generate and blocks until the backend finishes
func (c *Client) GenerateSummary(ctx context.Context, req models.SummaryRequest) (*models.GeneratedSummary, error) {
	var resp models.GeneratedSummary
	if err := c.do(ctx, http.MethodPost, "/summaries/generate", req, true, &resp); err != nil {
		return nil, err
	}
	c.summaries.Set(resp.ID, resp.SummaryRecord)
	return &resp, nil
}

// SummaryHistory calls GET /summaries/history
func (c *Client) SummaryHistory(ctx context.Context) ([]models.SummaryRecord, error) {
	var records []models.SummaryRecord
	if err := c.do(ctx, http.MethodGet, "/summaries/history", nil, true, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// RecentSummaries calls GET /summaries/recent?limit=N
func (c *Client) RecentSummaries(ctx context.Context, limit int) ([]models.SummaryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	path := "/summaries/recent?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()

	var records []models.SummaryRecord
	if err := c.do(ctx, http.MethodGet, path, nil, true, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetSummary calls GET /summaries/{id}. Records never change server-side so
// results are cached until deleted or the session ends.
func (c *Client) GetSummary(ctx context.Context, id int64) (*models.SummaryRecord, error) {
	if c.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	if rec, ok := c.summaries.Get(id); ok {
		return &rec, nil
	}

	var rec models.SummaryRecord
	if err := c.do(ctx, http.MethodGet, summaryPath(id), nil, true, &rec); err != nil {
		return nil, err
	}
	c.summaries.Set(id, rec)
	return &rec, nil
}

// DeleteSummary calls DELETE /summaries/{id}
func (c *Client) DeleteSummary(ctx context.Context, id int64) (*models.Ack, error) {
	var ack models.Ack
	err := c.do(ctx, http.MethodDelete, summaryPath(id), nil, true, &ack)
	c.summaries.Delete(id)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// UserStats calls GET /summaries/stats
func (c *Client) UserStats(ctx context.Context) (*models.UsageStats, error) {
	var stats models.UsageStats
	if err := c.do(ctx, http.MethodGet, "/summaries/stats", nil, true, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Account ---

// UserProfile calls GET /users/profile
func (c *Client) UserProfile(ctx context.Context) (*models.AccountProfile, error) {
	var profile models.AccountProfile
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UserLimits calls GET /users/limits
func (c *Client) UserLimits(ctx context.Context) (*models.UserLimits, error) {
	var limits models.UserLimits
	if err := c.do(ctx, http.MethodGet, "/users/limits", nil, true, &limits); err != nil {
		return nil, err
	}
	return &limits, nil
}

// UpgradeUser calls PUT /users/upgrade?type=TYPE
func (c *Client) UpgradeUser(ctx context.Context, userType models.UserType) (*models.UpgradeResult, error) {
	path := "/users/upgrade?" + url.Values{"type": {string(userType)}}.Encode()

	var result models.UpgradeResult
	if err := c.do(ctx, http.MethodPut, path, nil, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func summaryPath(id int64) string {
	return "/summaries/" + strconv.FormatInt(id, 10)
}

// do sends a JSON request and decodes a JSON response into out.
// Auth-required calls fail fast with ErrNotAuthenticated when there is no token.
func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, out any) error {
	resp, err := c.send(ctx, method, path, body, auth, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// send performs the request and returns the response only for 2xx statuses.
// The caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body any, auth bool, accept string) (*http.Response, error) {
	if auth && c.Token() == "" {
		return nil, ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.handleErrorResponse(resp)
	}
	return resp, nil
}

// handleRequestError converts transport failures to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &TransportError{BaseURL: c.baseURL, Message: "request canceled", Err: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return &TransportError{BaseURL: c.baseURL, Message: "request timed out", Err: err}
	}
	return &TransportError{BaseURL: c.baseURL, Message: "cannot connect to backend at " + c.baseURL, Err: err}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &errResp); err == nil {
		apiErr.Message = errResp.Error
		if apiErr.Message == "" {
			apiErr.Message = errResp.Message
		}
		apiErr.Details = errResp.Details
	}
	return apiErr
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
