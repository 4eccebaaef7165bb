package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clubware/authkit/pkg/logger"
	"github.com/clubware/authkit/pkg/session"
)

// Config holds configuration for the authentication API client.
type Config struct {
	BaseURL string        `env:"AUTH_API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"10s"`
}

// Client is the HTTP implementation of session.API. It speaks the backend's
// JSON authentication contract and translates every failure into a
// *session.APIError carrying the HTTP status and the server-supplied error
// message when one was decoded.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option is a functional option for configuring the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used by the client
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an authentication API client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type meResponse struct {
	User session.User `json:"user"`
}

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	var out session.AuthResult
	if err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns a token and user record.
func (c *Client) Register(ctx context.Context, params session.RegisterParams) (*session.AuthResult, error) {
	var out session.AuthResult
	if err := c.post(ctx, "/api/auth/register", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeIDToken trades a federated provider identity for a token and user
// record.
func (c *Client) ExchangeIDToken(ctx context.Context, exchange session.IDTokenExchange) (*session.AuthResult, error) {
	var out session.AuthResult
	if err := c.post(ctx, "/api/auth/google", exchange, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the backend's current view of the token's owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out meResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WarnContext(req.Context(), "auth api request failed",
			logger.Component("apiclient"),
			slog.String("path", req.URL.Path),
			logger.Error(err),
		)
		// StatusCode 0 marks a responseless transport failure; the session
		// core maps it to a generic message.
		return errors.Join(&session.APIError{}, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &session.APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &session.APIError{StatusCode: resp.StatusCode, Message: "malformed response from server"}
	}
	return nil
}

// Compile-time interface assertion
var _ session.API = (*Client)(nil)
