package idp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/clubware/authkit/pkg/kvstore"
	"github.com/clubware/authkit/pkg/logger"
	"github.com/clubware/authkit/pkg/session"
)

// GoogleConfig holds configuration for the Google identity provider adapter.
type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
	PopupTimeout time.Duration `env:"GOOGLE_OAUTH_POPUP_TIMEOUT" envDefault:"3m"`
	StateTTL     time.Duration `env:"GOOGLE_OAUTH_STATE_TTL" envDefault:"10m"`
}

// OpenURLFunc opens a URL in a user-facing window. Popup sign-in uses it to
// present the provider's consent screen; a failure to open is reported as a
// blocked popup.
type OpenURLFunc func(url string) error

// NavigateFunc performs a full navigation of the hosting surface. Redirect
// sign-in uses it to leave for the provider.
type NavigateFunc func(url string)

// Flash keys carrying redirect state across the navigation.
const (
	stateKey  = "google:state"
	resultKey = "google:code"
)

// Google adapts Google federated sign-in to the session.Provider interface.
//
// Two flows are exposed. The popup flow opens the consent screen in a
// separate window and completes in-process through a loopback listener. The
// redirect flow leaves the page entirely: state is persisted in the flash
// store, the callback handler captures the provider's return leg, and
// ResolveRedirectResult finishes the exchange on the next application load.
//
// Every failure is normalized onto the closed session.ProviderErrorCode set
// before it leaves this package.
type Google struct {
	conf         *oauth2.Config
	httpClient   *http.Client
	flash        kvstore.Flash
	log          *slog.Logger
	openURL      OpenURLFunc
	navigate     NavigateFunc
	popupTimeout time.Duration
	stateTTL     time.Duration
	userinfoURL  string
}

// GoogleOption is a functional option for configuring the adapter
type GoogleOption func(*Google)

// WithLogger sets the logger used by the adapter
func WithLogger(log *slog.Logger) GoogleOption {
	return func(g *Google) {
		if log != nil {
			g.log = log
		}
	}
}

// WithHTTPClient sets the HTTP client used for token exchange and profile
// fetches
func WithHTTPClient(hc *http.Client) GoogleOption {
	return func(g *Google) {
		if hc != nil {
			g.httpClient = hc
		}
	}
}

// WithEndpoint overrides the OAuth endpoint. Used by tests to point the
// adapter at a stub provider.
func WithEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(g *Google) {
		g.conf.Endpoint = endpoint
	}
}

// WithUserinfoURL overrides the profile endpoint. Used by tests.
func WithUserinfoURL(u string) GoogleOption {
	return func(g *Google) {
		if u != "" {
			g.userinfoURL = u
		}
	}
}

// NewGoogle creates a Google identity provider adapter. The flash store
// carries redirect state across navigations; openURL and navigate connect
// the adapter to the hosting surface.
func NewGoogle(cfg GoogleConfig, flash kvstore.Flash, openURL OpenURLFunc, navigate NavigateFunc, opts ...GoogleOption) *Google {
	if flash == nil {
		panic("idp: flash store is required")
	}

	g := &Google{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		flash:        flash,
		log:          logger.Discard(),
		openURL:      openURL,
		navigate:     navigate,
		popupTimeout: cfg.PopupTimeout,
		stateTTL:     cfg.StateTTL,
		userinfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
	}
	if g.popupTimeout <= 0 {
		g.popupTimeout = 3 * time.Minute
	}
	if g.stateTTL <= 0 {
		g.stateTTL = 10 * time.Minute
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SignInPopup runs the popup flow: a loopback listener receives the
// provider's redirect while the consent screen is open in a separate
// window. The call resolves when the user completes or abandons sign-in.
func (g *Google) SignInPopup(ctx context.Context) (*session.ProviderUser, error) {
	if g.openURL == nil {
		return nil, &session.ProviderError{Code: session.ProviderPopupBlocked, Message: "no window opener available"}
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, &session.ProviderError{Code: session.ProviderPopupBlocked, Message: "cannot open local callback listener"}
	}
	defer func() { _ = listener.Close() }()

	state, err := generateState()
	if err != nil {
		return nil, &session.ProviderError{Code: session.ProviderOther, Message: "cannot generate state"}
	}

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())

	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			fmt.Fprint(w, "Sign-in was not completed. You can close this window.")
			results <- callbackResult{err: &session.ProviderError{Code: session.ProviderPopupClosed, Message: q.Get("error")}}
		case q.Get("state") != state:
			http.Error(w, "Sign-in request did not match. You can close this window.", http.StatusBadRequest)
			results <- callbackResult{err: &session.ProviderError{Code: session.ProviderOther, Message: "state mismatch"}}
		default:
			fmt.Fprint(w, "Signed in. You can close this window.")
			results <- callbackResult{code: q.Get("code")}
		}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()

	// The popup needs its own redirect target on the loopback address.
	popupConf := *g.conf
	popupConf.RedirectURL = redirectURL

	if err := g.openURL(popupConf.AuthCodeURL(state)); err != nil {
		return nil, &session.ProviderError{Code: session.ProviderPopupBlocked, Message: "popup window could not be opened"}
	}

	timer := time.NewTimer(g.popupTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return g.resolveProfile(ctx, &popupConf, res.code)
	case <-timer.C:
		return nil, &session.ProviderError{Code: session.ProviderPopupClosed, Message: "sign-in window was closed"}
	case <-ctx.Done():
		return nil, &session.ProviderError{Code: session.ProviderPopupClosed, Message: "sign-in was abandoned"}
	}
}

// SignInRedirect leaves for the provider's consent screen via a full
// navigation. CSRF state is persisted first so the callback handler can
// verify the return leg.
func (g *Google) SignInRedirect(ctx context.Context) error {
	if g.navigate == nil {
		return &session.ProviderError{Code: session.ProviderOther, Message: "no navigation hook available"}
	}

	state, err := generateState()
	if err != nil {
		return &session.ProviderError{Code: session.ProviderOther, Message: "cannot generate state"}
	}
	if err := g.flash.Put(ctx, stateKey, state, g.stateTTL); err != nil {
		return &session.ProviderError{Code: session.ProviderOther, Message: "cannot persist sign-in state"}
	}

	g.navigate(g.conf.AuthCodeURL(state))
	return nil
}

// ResolveRedirectResult consumes a captured redirect return leg, once. It
// returns (nil, nil) when no redirect is in flight so hosts can call it
// unconditionally on every load.
func (g *Google) ResolveRedirectResult(ctx context.Context) (*session.ProviderUser, error) {
	code, err := g.flash.Take(ctx, resultKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, &session.ProviderError{Code: session.ProviderOther, Message: "cannot read redirect result"}
	}

	return g.resolveProfile(ctx, g.conf, code)
}

// resolveProfile exchanges the authorization code and fetches the user's
// profile, normalizing every failure onto the closed code set.
func (g *Google) resolveProfile(ctx context.Context, conf *oauth2.Config, code string) (*session.ProviderUser, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		g.log.WarnContext(ctx, "code exchange failed",
			logger.Component("idp"),
			logger.Provider("google"),
			logger.Error(err),
		)
		return nil, classifyExchangeError(err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, &session.ProviderError{Code: session.ProviderOther, Message: "provider response is missing the identity token"}
	}

	profile, err := g.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		g.log.WarnContext(ctx, "profile fetch failed",
			logger.Component("idp"),
			logger.Provider("google"),
			logger.Error(err),
		)
		return nil, classifyExchangeError(err)
	}

	return &session.ProviderUser{
		IDToken:  idToken,
		Email:    profile.Email,
		Name:     profile.Name,
		PhotoURL: profile.Picture,
	}, nil
}

type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) fetchProfile(ctx context.Context, accessToken string) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// classifyExchangeError maps transport-level failures to network_error and
// everything else to other.
func classifyExchangeError(err error) *session.ProviderError {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &session.ProviderError{Code: session.ProviderNetworkError, Message: "identity provider is unreachable"}
	}
	return &session.ProviderError{Code: session.ProviderOther, Message: "sign-in could not be completed"}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Compile-time interface assertion
var _ session.Provider = (*Google)(nil)
