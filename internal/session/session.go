// ABOUTME: Session controller owning the authenticated-user state machine
// ABOUTME: Restores, establishes, and tears down sessions and publishes every transition

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/store"
)

// State is the lifecycle position of the session
type State int

const (
	StateUnknown State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session
type Snapshot struct {
	State   State
	Token   string
	User    *models.UserProfile
	Loading bool
}

// IsAuthenticated is true iff both a token and a user are present
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Result is the outcome of a login-type action. It never carries a Go error;
// Error is display text.
type Result struct {
	Success   bool
	Error     string
	Profile   *models.UserProfile
	IsNewUser bool
}

// API is the subset of the backend client the controller needs
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	LoginWithGoogle(ctx context.Context, credential string) (*models.GoogleAuthResponse, error)
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
}

// cacheResetter is implemented by clients that cache per-session responses
type cacheResetter interface {
	ResetCache()
}

// Controller is the single source of truth for the current session
type Controller struct {
	api   API
	store store.Store
	group singleflight.Group

	mu        sync.RWMutex
	state     State
	token     string
	user      *models.UserProfile
	loading   bool
	validated string // token confirmed by the backend this process
	subs      map[int]chan Snapshot
	nextSub   int
}

// NewController creates a controller in StateUnknown with loading set;
// call Restore to resolve it.
func NewController(api API, st store.Store) *Controller {
	return &Controller{
		api:     api,
		store:   st,
		state:   StateUnknown,
		loading: true,
		subs:    make(map[int]chan Snapshot),
	}
}

// Token returns the in-memory token; it implements middleware.TokenSource
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Snapshot returns the current session view
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Token: c.token, Loading: c.loading}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	return snap
}

// Restore loads the persisted session and validates it with the backend.
// Concurrent calls share one validation request, and a token already
// validated by this process is not checked again.
func (c *Controller) Restore(ctx context.Context) Snapshot {
	v, _, _ := c.group.Do("restore", func() (any, error) {
		return c.restore(ctx), nil
	})
	return v.(Snapshot)
}

func (c *Controller) restore(ctx context.Context) Snapshot {
	c.mu.RLock()
	if c.state == StateAuthenticated && c.token != "" && c.token == c.validated {
		snap := c.snapshotLocked()
		c.mu.RUnlock()
		return snap
	}
	c.mu.RUnlock()

	token, user, err := c.store.Read()
	if err != nil {
		slog.Warn("failed to read persisted session", "error", err)
	}
	if err != nil || token == "" || user == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if token != "" || user != nil {
			c.clearStoreLocked()
		}
		c.resetLocked(StateAnonymous)
		c.publishLocked()
		return c.snapshotLocked()
	}

	c.mu.Lock()
	c.state = StateRestoring
	c.token = token
	c.user = user
	c.loading = true
	c.publishLocked()
	c.mu.Unlock()

	profile, err := c.api.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != token || c.state != StateRestoring {
		// A logout, login or 401 happened while validating; it wins.
		return c.snapshotLocked()
	}

	if err != nil {
		slog.Info("persisted session rejected", "error", err)
		c.clearStoreLocked()
		c.resetLocked(StateAnonymous)
		c.publishLocked()
		return c.snapshotLocked()
	}

	c.state = StateAuthenticated
	c.user = profile
	c.validated = token
	c.loading = false
	c.saveLocked()
	c.publishLocked()
	return c.snapshotLocked()
}

// Login authenticates with username and password
func (c *Controller) Login(ctx context.Context, username, password string) Result {
	if err := ValidateLogin(username, password); err != nil {
		return Result{Error: err.Error()}
	}

	resp, err := c.api.Login(ctx, models.LoginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
	})
	if err != nil {
		return failure(err, "login failed")
	}
	return c.establish(resp.Token, resp.Profile(), false)
}

// Register creates an account and signs in. The form is re-validated and
// an invalid form never reaches the backend.
func (c *Controller) Register(ctx context.Context, form RegistrationForm) Result {
	if err := ValidateRegistration(form); err != nil {
		return Result{Error: err.Error()}
	}

	resp, err := c.api.Register(ctx, models.RegisterRequest{
		Username: strings.TrimSpace(form.Username),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	if err != nil {
		return failure(err, "registration failed")
	}
	return c.establish(resp.Token, resp.Profile(), false)
}

// LoginWithFederatedCredential forwards an identity-provider credential
// verbatim to the backend exchange
func (c *Controller) LoginWithFederatedCredential(ctx context.Context, credential string) Result {
	if credential == "" {
		return Result{Error: "google sign-in failed: no credential received"}
	}

	resp, err := c.api.LoginWithGoogle(ctx, credential)
	if err != nil {
		return failure(err, "google sign-in failed")
	}
	return c.establish(resp.Token, resp.Profile(), resp.IsNewUser)
}

func (c *Controller) establish(token string, profile models.UserProfile, isNew bool) Result {
	if token == "" {
		return Result{Error: "login failed: backend returned no token"}
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.token = token
	c.user = &profile
	c.loading = false
	c.validated = token
	c.saveLocked()
	c.publishLocked()
	c.mu.Unlock()

	p := profile
	return Result{Success: true, Profile: &p, IsNewUser: isNew}
}

// Logout ends the session locally. The backend is not contacted.
func (c *Controller) Logout() {
	c.mu.Lock()
	c.clearStoreLocked()
	c.resetLocked(StateAnonymous)
	c.publishLocked()
	c.mu.Unlock()

	c.resetCache()
}

// Invalidate handles a 401 for a request that carried token. Only the
// session that owns token is cleared, so concurrent 401s cause a single
// transition and a login that completed meanwhile is left alone.
// It reports whether the session was cleared.
func (c *Controller) Invalidate(token string) bool {
	c.mu.Lock()
	if token == "" || token != c.token ||
		(c.state != StateAuthenticated && c.state != StateRestoring) {
		c.mu.Unlock()
		return false
	}
	slog.Info("session rejected by backend, signing out")
	c.clearStoreLocked()
	c.resetLocked(StateAnonymous)
	c.publishLocked()
	c.mu.Unlock()

	c.resetCache()
	return true
}

// UpdateUser merges patch into the in-memory profile and re-persists it.
// It reports false when there is no user to update.
func (c *Controller) UpdateUser(patch models.ProfilePatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return false
	}
	updated := patch.Apply(*c.user)
	c.user = &updated
	c.saveLocked()
	c.publishLocked()
	return true
}

// Reload reconciles memory with the store after another process changed it.
// A cleared store signs this process out; a different token is adopted and
// will be validated on the next Restore.
func (c *Controller) Reload() {
	token, user, err := c.store.Read()
	if err != nil {
		slog.Warn("failed to reload session", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token == c.token {
		return
	}
	if token == "" || user == nil {
		if c.state == StateAuthenticated {
			slog.Info("session ended by another process")
			c.resetLocked(StateAnonymous)
			c.publishLocked()
		}
		return
	}
	c.state = StateAuthenticated
	c.token = token
	c.user = user
	c.loading = false
	c.publishLocked()
}

// Subscribe returns a channel that always holds the latest snapshot. Slow
// readers see only the newest value. Call cancel to stop delivery.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Controller) resetLocked(state State) {
	c.state = state
	c.token = ""
	c.user = nil
	c.loading = false
	c.validated = ""
}

func (c *Controller) saveLocked() {
	if c.user == nil {
		return
	}
	if err := c.store.Save(c.token, *c.user); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}
}

func (c *Controller) clearStoreLocked() {
	if err := c.store.Clear(); err != nil {
		slog.Warn("failed to clear persisted session", "error", err)
	}
}

func (c *Controller) resetCache() {
	if r, ok := c.api.(cacheResetter); ok {
		r.ResetCache()
	}
}

// failure turns an API error into display text
func failure(err error, fallback string) Result {
	slog.Debug("auth request failed", "error", err)

	if msg, ok := client.BackendMessage(err); ok {
		return Result{Error: msg}
	}
	var te *client.TransportError
	if errors.As(err, &te) {
		return Result{Error: fmt.Sprintf("%s: %s", fallback, te.Message)}
	}
	return Result{Error: fallback}
}
