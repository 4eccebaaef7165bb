package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/authkit/pkg/kvstore"
	"github.com/clubware/authkit/pkg/session"
)

type noopAPI struct{}

func (noopAPI) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	return nil, &session.APIError{StatusCode: 401, Message: "Invalid email or password"}
}

func (noopAPI) Register(ctx context.Context, params session.RegisterParams) (*session.AuthResult, error) {
	return nil, &session.APIError{StatusCode: 400, Message: "Registration disabled"}
}

func (noopAPI) ExchangeIDToken(ctx context.Context, exchange session.IDTokenExchange) (*session.AuthResult, error) {
	return nil, &session.APIError{StatusCode: 400, Message: "Exchange disabled"}
}

func (noopAPI) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	return nil, &session.APIError{StatusCode: 401, Message: "No token provided"}
}

type noopProvider struct{}

func (noopProvider) SignInPopup(ctx context.Context) (*session.ProviderUser, error) {
	return nil, &session.ProviderError{Code: session.ProviderOther}
}

func (noopProvider) SignInRedirect(ctx context.Context) error { return nil }

func (noopProvider) ResolveRedirectResult(ctx context.Context) (*session.ProviderUser, error) {
	return nil, nil
}

func TestControllerContext(t *testing.T) {
	t.Parallel()

	ctrl := session.New(noopAPI{}, noopProvider{}, kvstore.NewMemoryStore())

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		ctx := session.WithController(context.Background(), ctrl)

		got, ok := session.FromContext(ctx)
		require.True(t, ok)
		assert.Same(t, ctrl, got)
		assert.Same(t, ctrl, session.MustFromContext(ctx))
	})

	t.Run("absent controller", func(t *testing.T) {
		t.Parallel()

		_, ok := session.FromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("must fails loudly", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			session.MustFromContext(context.Background())
		})
	})
}
