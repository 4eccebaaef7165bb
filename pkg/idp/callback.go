package idp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubware/authkit/pkg/logger"
)

// defaultLandingPath is where the callback sends the user after capturing
// the return leg. The application resumes there and resolves the result
// during boot.
const defaultLandingPath = "/"

// CallbackHandler returns a router serving the provider's redirect return
// leg. It verifies the CSRF state, stashes the authorization code for
// ResolveRedirectResult to consume, and sends the user back into the
// application. Failures are logged and dropped so the application boots
// into a signed-out state instead of an error page.
func (g *Google) CallbackHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/auth/google/callback", g.handleCallback)
	return r
}

func (g *Google) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	defer http.Redirect(w, r, defaultLandingPath, http.StatusFound)

	if errParam := q.Get("error"); errParam != "" {
		g.log.WarnContext(ctx, "provider returned an error",
			logger.Component("idp"),
			logger.Provider("google"),
			logger.Event(errParam),
		)
		return
	}

	expected, err := g.flash.Take(ctx, stateKey)
	if err != nil || expected == "" || q.Get("state") != expected {
		g.log.WarnContext(ctx, "redirect state verification failed",
			logger.Component("idp"),
			logger.Provider("google"),
		)
		return
	}

	code := q.Get("code")
	if code == "" {
		return
	}

	if err := g.flash.Put(ctx, resultKey, code, g.stateTTL); err != nil {
		g.log.ErrorContext(ctx, "cannot stash redirect result",
			logger.Component("idp"),
			logger.Provider("google"),
			logger.Error(err),
		)
	}
}
