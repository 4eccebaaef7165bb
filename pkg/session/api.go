package session

import (
	"context"
	"fmt"
)

// API defines the backend authentication operations consumed by the
// Controller. The concrete HTTP implementation lives in pkg/apiclient; the
// interface is declared here so the controller never depends on transport
// details.
type API interface {
	// Login exchanges credentials for a token and user record.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Register creates an account and returns a token and user record.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// ExchangeIDToken trades a federated provider identity for a token and
	// user record.
	ExchangeIDToken(ctx context.Context, exchange IDTokenExchange) (*AuthResult, error)

	// CurrentUser returns the backend's current view of the user owning the
	// token. Used for session re-validation.
	CurrentUser(ctx context.Context, token string) (*User, error)
}

// AuthResult is the successful response shared by login, register and the
// federated exchange.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterParams carries the registration request fields.
type RegisterParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// IDTokenExchange carries a federated provider identity to the backend.
type IDTokenExchange struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// APIError is a structured backend failure: an HTTP status code plus the
// server-supplied error message when one was decoded. A StatusCode of zero
// means the request never produced a response (network failure).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
