package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/clubware/authkit/pkg/kvstore"
	"github.com/clubware/authkit/pkg/logger"
)

// Result is the structured outcome of every controller operation. The
// controller is the error boundary: operations never return raw errors to
// the host, only display-ready messages and navigation intents.
type Result struct {
	// Success reports whether the operation achieved its goal.
	Success bool
	// Redirecting means a redirect-based provider flow took over navigation;
	// callers must not assume further code executes.
	Redirecting bool
	// RedirectTo is the navigation intent for the host UI, empty when the
	// operation implies no navigation.
	RedirectTo string
	// Error is a failure message suitable for direct display.
	Error string
}

// Controller owns the in-memory session and orchestrates login, register,
// federated sign-in, logout, boot-time restoration and re-validation.
//
// One Controller backs the whole application for its lifetime. Operations
// are safe for concurrent use, but overlapping mutating calls (for example a
// login racing a logout) are not coalesced; the host UI is responsible for
// preventing duplicate submission.
type Controller struct {
	store    kvstore.Store
	flash    kvstore.Flash
	api      API
	provider Provider
	log      *slog.Logger
	cfg      Config

	mu      sync.RWMutex
	status  Status
	session *Session

	subMu sync.Mutex
	subs  map[*Subscriber]struct{}
}

// New creates a session controller. The API client, provider adapter and
// store are required; a nil flash store falls back to an in-memory one.
// Construction fails fast on missing dependencies so misconfiguration
// surfaces at boot, not mid-flow.
func New(api API, provider Provider, store kvstore.Store, opts ...Option) *Controller {
	if api == nil {
		panic("session: api client is required")
	}
	if provider == nil {
		panic("session: identity provider is required")
	}
	if store == nil {
		panic("session: store is required")
	}

	c := &Controller{
		store:    store,
		api:      api,
		provider: provider,
		log:      logger.Discard(),
		cfg:      DefaultConfig(),
		status:   StatusUnknown,
		subs:     make(map[*Subscriber]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.flash == nil {
		c.flash = kvstore.NewMemoryFlash()
	}

	return c
}

// Restore runs the boot sequence: resolve a pending redirect result first,
// then fall back to local-token restoration. The redirect exchange, when it
// applies, completes before the fallback path can commit to unauthenticated,
// so a redirect return never flashes a logged-out state.
//
// On a plain restoration the returned Result carries no navigation; after a
// redirect exchange it carries the role-routed destination.
func (c *Controller) Restore(ctx context.Context) Result {
	c.setState(StatusRestoring, nil)

	if res, handled := c.resolveRedirect(ctx); handled {
		return res
	}

	sess, ok := c.readStoredSession(ctx)
	if !ok {
		c.setState(StatusUnauthenticated, nil)
		return Result{Success: true}
	}

	// Optimistic restore: trust the cached session immediately, then let the
	// backend correct role/profile drift.
	c.setState(StatusAuthenticated, &sess)
	c.revalidate(ctx)

	return Result{Success: true}
}

// resolveRedirect checks whether this load is the return leg of a redirect
// sign-in. It reports handled=true only when the provider yielded a user and
// the exchange succeeded; any failure falls through to local restoration.
func (c *Controller) resolveRedirect(ctx context.Context) (Result, bool) {
	pu, err := c.provider.ResolveRedirectResult(ctx)
	if err != nil {
		// A failed redirect falls through silently to a fresh
		// unauthenticated state; it never raises to the UI.
		c.log.WarnContext(ctx, "redirect result resolution failed",
			logger.Component("session"),
			logger.Error(err),
		)
		return Result{}, false
	}
	if pu == nil {
		return Result{}, false
	}

	// Read-once: the pending destination is cleared regardless of outcome.
	returnTo, err := c.flash.Take(ctx, c.cfg.ReturnToKey)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		c.log.WarnContext(ctx, "failed to read pending redirect destination",
			logger.Component("session"),
			logger.Error(err),
		)
	}

	res := c.exchangeProviderUser(ctx, pu, returnTo)
	if !res.Success {
		c.log.WarnContext(ctx, "redirect exchange failed",
			logger.Component("session"),
			slog.String("reason", res.Error),
		)
		return Result{}, false
	}
	return res, true
}

// readStoredSession loads the token and user record from the store. Corrupt
// or partial state reads as "no session" (fail closed).
func (c *Controller) readStoredSession(ctx context.Context) (Session, bool) {
	token, err := c.store.Get(ctx, c.cfg.TokenKey)
	if err != nil || token == "" {
		return Session{}, false
	}

	raw, err := c.store.Get(ctx, c.cfg.UserKey)
	if err != nil || raw == "" {
		return Session{}, false
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.WarnContext(ctx, "stored user record is corrupt, treating as no session",
			logger.Component("session"),
			logger.Error(err),
		)
		return Session{}, false
	}

	return Session{Token: token, User: user}, true
}

// Login authenticates with email and password. On failure the session state
// is untouched and the Result carries a display-ready message.
func (c *Controller) Login(ctx context.Context, email, password, returnTo string) Result {
	res, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.log.InfoContext(ctx, "login failed",
			logger.Component("session"),
			logger.Error(err),
		)
		return Result{Error: failureMessage(err)}
	}
	return c.adoptSession(ctx, res, returnTo)
}

// Register creates an account and signs the user in. Contract mirrors Login.
func (c *Controller) Register(ctx context.Context, params RegisterParams, returnTo string) Result {
	res, err := c.api.Register(ctx, params)
	if err != nil {
		c.log.InfoContext(ctx, "registration failed",
			logger.Component("session"),
			logger.Error(err),
		)
		return Result{Error: failureMessage(err)}
	}
	return c.adoptSession(ctx, res, returnTo)
}

// LoginWithGoogle signs in through the federated provider. The popup flow is
// attempted first; a blocked or dismissed popup falls back to the redirect
// flow, persisting returnTo for the return leg. When the redirect flow takes
// over the Result resolves with Redirecting set and callers must not assume
// further code executes.
func (c *Controller) LoginWithGoogle(ctx context.Context, returnTo string) Result {
	pu, err := c.provider.SignInPopup(ctx)
	if err != nil {
		var perr *ProviderError
		if !errors.As(err, &perr) {
			perr = &ProviderError{Code: ProviderOther, Message: err.Error()}
		}

		switch perr.Code {
		case ProviderPopupBlocked, ProviderPopupClosed:
			return c.fallbackToRedirect(ctx, returnTo)
		case ProviderNetworkError:
			return Result{Error: msgNetworkFailure}
		case ProviderOther:
			fallthrough
		default:
			if perr.Message != "" {
				return Result{Error: perr.Message}
			}
			return Result{Error: msgGoogleFailed}
		}
	}

	return c.exchangeProviderUser(ctx, pu, returnTo)
}

func (c *Controller) fallbackToRedirect(ctx context.Context, returnTo string) Result {
	if returnTo != "" {
		if err := c.flash.Put(ctx, c.cfg.ReturnToKey, returnTo, c.cfg.ReturnToTTL); err != nil {
			c.log.WarnContext(ctx, "failed to persist redirect destination",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	}

	c.log.InfoContext(ctx, "popup unavailable, falling back to redirect sign-in",
		logger.Component("session"),
	)

	if err := c.provider.SignInRedirect(ctx); err != nil {
		return Result{Error: msgGoogleFailed}
	}

	// In a browser the page has unloaded by now; this value is only
	// observable in hosts where SignInRedirect returns.
	return Result{Success: true, Redirecting: true}
}

// exchangeProviderUser trades a provider identity for a first-party session.
func (c *Controller) exchangeProviderUser(ctx context.Context, pu *ProviderUser, returnTo string) Result {
	res, err := c.api.ExchangeIDToken(ctx, IDTokenExchange{
		IDToken:  pu.IDToken,
		Email:    pu.Email,
		Name:     pu.Name,
		PhotoURL: pu.PhotoURL,
	})
	if err != nil {
		c.log.InfoContext(ctx, "federated exchange failed",
			logger.Component("session"),
			logger.Error(err),
		)
		return Result{Error: failureMessage(err)}
	}
	return c.adoptSession(ctx, res, returnTo)
}

// adoptSession persists and publishes a freshly issued session. The store is
// written before the in-memory state flips to authenticated so the
// authenticated invariant (token held in memory AND in the store) holds at
// every observable point.
func (c *Controller) adoptSession(ctx context.Context, res *AuthResult, returnTo string) Result {
	raw, err := json.Marshal(res.User)
	if err != nil {
		return Result{Error: msgAuthFailed}
	}
	if err := c.store.Set(ctx, c.cfg.TokenKey, res.Token); err != nil {
		c.log.ErrorContext(ctx, "failed to persist token",
			logger.Component("session"),
			logger.Error(err),
		)
		return Result{Error: msgAuthFailed}
	}
	if err := c.store.Set(ctx, c.cfg.UserKey, string(raw)); err != nil {
		_ = c.store.Remove(ctx, c.cfg.TokenKey)
		return Result{Error: msgAuthFailed}
	}

	c.setState(StatusAuthenticated, &Session{Token: res.Token, User: res.User})

	c.log.InfoContext(ctx, "session established",
		logger.Component("session"),
		logger.UserID(res.User.ID),
		logger.Role(res.User.Role),
	)

	return Result{Success: true, RedirectTo: c.destinationFor(res.User.Role, returnTo)}
}

// revalidate refreshes the cached user record from the backend. The backend
// is the source of truth for role and profile drift.
//
// The 401 handling is deliberately asymmetric: a 401 that clearly signals a
// dead token destroys the session (implicit logout), while any other 401 is
// treated as ambiguous and non-destructive. A user must never be punished
// for a transient or ambiguous failure, but clearly dead tokens must be
// purged.
func (c *Controller) revalidate(ctx context.Context) {
	c.mu.RLock()
	if c.session == nil {
		c.mu.RUnlock()
		return
	}
	token := c.session.Token
	c.mu.RUnlock()

	user, err := c.api.CurrentUser(ctx, token)
	if err == nil {
		if raw, merr := json.Marshal(user); merr == nil {
			if serr := c.store.Set(ctx, c.cfg.UserKey, string(raw)); serr != nil {
				c.log.WarnContext(ctx, "failed to refresh stored user record",
					logger.Component("session"),
					logger.Error(serr),
				)
			}
		}
		c.setState(StatusAuthenticated, &Session{Token: token, User: *user})
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		if tokenIsDead(apiErr.Message) {
			c.log.InfoContext(ctx, "stored token rejected, logging out",
				logger.Component("session"),
				logger.Event("implicit_logout"),
			)
			c.clearSession(ctx)
			return
		}
		// Ambiguous 401: keep the cached session, just stop the loading
		// state. See the dual-401 contract in the package documentation.
		c.log.WarnContext(ctx, "ambiguous 401 during re-validation, keeping session",
			logger.Component("session"),
			logger.Error(apiErr),
		)
		c.confirmCached()
		return
	}

	// Transient failure (network, 5xx): leave the session untouched.
	c.log.WarnContext(ctx, "re-validation failed transiently",
		logger.Component("session"),
		logger.Error(err),
	)
	c.confirmCached()
}

// Refresh re-runs re-validation on demand. A no-op without a session.
func (c *Controller) Refresh(ctx context.Context) Result {
	c.revalidate(ctx)
	return Result{Success: true}
}

// Logout destroys the session and signals navigation to the sign-in surface.
// Idempotent: logging out while unauthenticated only re-emits the navigation.
func (c *Controller) Logout(ctx context.Context) Result {
	c.clearSession(ctx)
	return Result{Success: true, RedirectTo: c.cfg.SignInDestination}
}

func (c *Controller) clearSession(ctx context.Context) {
	if err := c.store.Remove(ctx, c.cfg.TokenKey); err != nil {
		c.log.WarnContext(ctx, "failed to remove stored token",
			logger.Component("session"),
			logger.Error(err),
		)
	}
	if err := c.store.Remove(ctx, c.cfg.UserKey); err != nil {
		c.log.WarnContext(ctx, "failed to remove stored user record",
			logger.Component("session"),
			logger.Error(err),
		)
	}
	c.setState(StatusUnauthenticated, nil)
}

// confirmCached keeps the current cached session and marks it authenticated,
// clearing any in-flight restoring state.
func (c *Controller) confirmCached() {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	c.status = StatusAuthenticated
	c.mu.Unlock()
	c.publish()
}

// Status returns the current state machine position.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Session returns a copy of the current session, if one is held.
func (c *Controller) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Controller) setState(status Status, sess *Session) {
	c.mu.Lock()
	c.status = status
	c.session = sess
	c.mu.Unlock()
	c.publish()
}

// failureMessage builds the display message for a failed API call: the
// server-supplied error field first, then the raw error text, then a generic
// fallback for responseless transport failures.
func failureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgAuthFailed
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return msgAuthFailed
}

// tokenIsDead classifies a 401 message as a clear invalid/expired-token
// signal. Substring matching mirrors the backend's current contract; switch
// to a machine-readable error code once the backend emits one.
func tokenIsDead(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "invalid token") || strings.Contains(m, "expired")
}
