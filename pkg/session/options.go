package session

import (
	"log/slog"

	"github.com/clubware/authkit/pkg/kvstore"
)

// Option is a functional option for configuring the Controller
type Option func(*Controller)

// WithConfig sets custom configuration
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger used by the controller
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithFlash sets the read-once store carrying the pending redirect
// destination across a redirect-based sign-in
func WithFlash(flash kvstore.Flash) Option {
	return func(c *Controller) {
		c.flash = flash
	}
}

// WithStoreKeys overrides the store keys for the token and user record
func WithStoreKeys(tokenKey, userKey string) Option {
	return func(c *Controller) {
		if tokenKey != "" {
			c.cfg.TokenKey = tokenKey
		}
		if userKey != "" {
			c.cfg.UserKey = userKey
		}
	}
}

// WithDestinations overrides the role-based navigation destinations
func WithDestinations(admin, manager, member, signIn string) Option {
	return func(c *Controller) {
		if admin != "" {
			c.cfg.AdminDestination = admin
		}
		if manager != "" {
			c.cfg.ManagerDestination = manager
		}
		if member != "" {
			c.cfg.MemberDestination = member
		}
		if signIn != "" {
			c.cfg.SignInDestination = signIn
		}
	}
}
