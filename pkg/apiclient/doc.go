// Package apiclient implements the backend authentication contract consumed
// by the session core.
//
// Four endpoints are covered, all JSON over HTTP with a bearer token where
// one applies:
//
//	POST /api/auth/login     {email, password}                  → {token, user}
//	POST /api/auth/register  {email, password, name, role, ...} → {token, user}
//	POST /api/auth/google    {idToken, email, name, photoURL}   → {token, user}
//	GET  /api/auth/me        Authorization: Bearer <token>      → {user}
//
// Failures surface as *session.APIError: the HTTP status plus the decoded
// server `{error}` message. A StatusCode of zero marks a responseless
// transport failure. The client never interprets failures beyond that; the
// session controller owns error classification.
//
// # Usage
//
//	var cfg apiclient.Config
//	config.MustLoad(&cfg)
//
//	client := apiclient.New(cfg, apiclient.WithLogger(log))
//	ctrl := session.New(client, provider, store)
package apiclient
