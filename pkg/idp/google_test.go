package idp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/clubware/authkit/pkg/kvstore"
	"github.com/clubware/authkit/pkg/session"
)

// stubProvider serves the token and userinfo endpoints of a fake identity
// provider.
func stubProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "c1" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1",
			"token_type":   "Bearer",
			"id_token":     "idt-1",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":      "g-1",
			"email":   "g@example.com",
			"name":    "Goo Gle",
			"picture": "https://p/g.png",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(t *testing.T, flash kvstore.Flash, openURL OpenURLFunc, navigate NavigateFunc) *Google {
	t.Helper()

	srv := stubProvider(t)
	return NewGoogle(
		GoogleConfig{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURL:  "https://app.example.com/auth/google/callback",
			PopupTimeout: 5 * time.Second,
		},
		flash,
		openURL,
		navigate,
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithUserinfoURL(srv.URL+"/userinfo"),
	)
}

// completePopup simulates the user finishing consent: it plays the
// provider's redirect back into the loopback listener.
func completePopup(t *testing.T, query url.Values) OpenURLFunc {
	t.Helper()

	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)

		redirect, err := url.Parse(u.Query().Get("redirect_uri"))
		require.NoError(t, err)

		q := url.Values{}
		if query.Get("error") == "" {
			q.Set("state", u.Query().Get("state"))
			q.Set("code", "c1")
		}
		for k, vs := range query {
			q[k] = vs
		}
		redirect.RawQuery = q.Encode()

		go func() {
			resp, err := http.Get(redirect.String())
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestGoogle_SignInPopup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("completed consent yields provider user", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), completePopup(t, url.Values{}), nil)

		user, err := g.SignInPopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, "idt-1", user.IDToken)
		assert.Equal(t, "g@example.com", user.Email)
		assert.Equal(t, "Goo Gle", user.Name)
		assert.Equal(t, "https://p/g.png", user.PhotoURL)
	})

	t.Run("window that cannot open is a blocked popup", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), func(string) error {
			return errors.New("no display")
		}, nil)

		_, err := g.SignInPopup(ctx)
		var perr *session.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, session.ProviderPopupBlocked, perr.Code)
	})

	t.Run("declined consent is a closed popup", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), completePopup(t, url.Values{"error": {"access_denied"}}), nil)

		_, err := g.SignInPopup(ctx)
		var perr *session.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, session.ProviderPopupClosed, perr.Code)
	})

	t.Run("abandoned window times out as closed", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), func(string) error { return nil }, nil)
		g.popupTimeout = 50 * time.Millisecond

		_, err := g.SignInPopup(ctx)
		var perr *session.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, session.ProviderPopupClosed, perr.Code)
	})

	t.Run("unreachable token endpoint is a network error", func(t *testing.T) {
		t.Parallel()

		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		g := NewGoogle(
			GoogleConfig{ClientID: "cid", ClientSecret: "secret", PopupTimeout: 5 * time.Second},
			kvstore.NewMemoryFlash(),
			completePopup(t, url.Values{}),
			nil,
			WithEndpoint(oauth2.Endpoint{
				AuthURL:   dead.URL + "/auth",
				TokenURL:  dead.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			}),
		)

		_, err := g.SignInPopup(context.Background())
		var perr *session.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, session.ProviderNetworkError, perr.Code)
	})
}

func TestGoogle_RedirectFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	signIn := func(t *testing.T, g *Google, captured *string) url.Values {
		t.Helper()
		require.NoError(t, g.SignInRedirect(ctx))
		require.NotEmpty(t, *captured)
		u, err := url.Parse(*captured)
		require.NoError(t, err)
		return u.Query()
	}

	t.Run("round trip through the callback", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		var captured string
		g := newTestGoogle(t, flash, nil, func(u string) { captured = u })

		query := signIn(t, g, &captured)
		assert.NotEmpty(t, query.Get("state"))

		// Provider sends the user back with the code.
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/auth/google/callback?code=c1&state="+url.QueryEscape(query.Get("state")), nil)
		g.CallbackHandler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, defaultLandingPath, rec.Header().Get("Location"))

		user, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "idt-1", user.IDToken)
		assert.Equal(t, "g@example.com", user.Email)
	})

	t.Run("result is consumed once", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		var captured string
		g := newTestGoogle(t, flash, nil, func(u string) { captured = u })

		query := signIn(t, g, &captured)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/auth/google/callback?code=c1&state="+url.QueryEscape(query.Get("state")), nil)
		g.CallbackHandler().ServeHTTP(rec, req)

		_, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)

		user, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("nothing in flight resolves to nil", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), nil, func(string) {})

		user, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("provider error on the return leg is dropped", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		var captured string
		g := newTestGoogle(t, flash, nil, func(u string) { captured = u })

		signIn(t, g, &captured)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
		g.CallbackHandler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)

		user, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("state mismatch drops the result", func(t *testing.T) {
		t.Parallel()

		flash := kvstore.NewMemoryFlash()
		var captured string
		g := newTestGoogle(t, flash, nil, func(u string) { captured = u })

		signIn(t, g, &captured)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c1&state=forged", nil)
		g.CallbackHandler().ServeHTTP(rec, req)

		user, err := g.ResolveRedirectResult(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("missing navigation hook fails closed", func(t *testing.T) {
		t.Parallel()

		g := newTestGoogle(t, kvstore.NewMemoryFlash(), nil, nil)

		err := g.SignInRedirect(ctx)
		var perr *session.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, session.ProviderOther, perr.Code)
	})
}
