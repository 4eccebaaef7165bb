package session

import "context"

type controllerContextKey struct{}

// WithController adds the session controller to the context. The host
// application does this once at boot; everything below reads it back.
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, controllerContextKey{}, c)
}

// FromContext retrieves the session controller from the context.
func FromContext(ctx context.Context) (*Controller, bool) {
	c, ok := ctx.Value(controllerContextKey{}).(*Controller)
	return c, ok
}

// MustFromContext retrieves the session controller from the context or
// panics. Reading session state outside a scope that carries the controller
// is a programming error and must fail loudly rather than silently return
// stale or default data.
func MustFromContext(ctx context.Context) *Controller {
	c, ok := FromContext(ctx)
	if !ok {
		panic("session: controller not found in context")
	}
	return c
}
