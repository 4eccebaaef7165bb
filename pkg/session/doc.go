// Package session implements the client-side session and authentication
// core: establishing, persisting, restoring and tearing down a user's
// authenticated session, including a federated sign-in flow with a
// popup/redirect fallback.
//
// # Architecture
//
// A Controller owns the in-memory session state and drives the state
// machine:
//
//	unknown → restoring → {authenticated, unauthenticated}
//
// It collaborates with three injected dependencies, each behind an
// interface so the core never touches transport, storage or provider
// specifics:
//
//   - kvstore.Store – durable storage for the token and serialized user
//     record (and kvstore.Flash for the read-once redirect carry-over).
//   - API – the backend authentication endpoints (pkg/apiclient).
//   - Provider – the federated identity provider (pkg/idp).
//
//	┌────────┐  subscribe  ┌────────────────┐
//	│ Host UI│ ◄────────── │   Controller   │
//	└────────┘  Result/    └────────────────┘
//	     │      Snapshot      │     │     │
//	     ▼                    ▼     ▼     ▼
//	 operations           Store   API  Provider
//
// # Boot
//
// Restore runs once per application load. A pending redirect sign-in result
// takes priority: it is exchanged (using the read-once pending destination)
// before local-token restoration may commit to unauthenticated, so a
// redirect return never flashes a logged-out state. Local restoration is
// optimistic: a cached token and user authenticate immediately, then a
// "who am I" call refreshes the record.
//
// # The dual-401 re-validation contract
//
// Re-validation classifies 401 responses asymmetrically:
//
//   - A 401 whose message clearly signals an invalid or expired token
//     destroys the session (implicit logout, silent).
//   - Any other 401 is ambiguous (for example a token header lost to a
//     timing issue) and is non-destructive: the cached session is kept and
//     only the loading state is cleared.
//
// This asymmetry is deliberate: the flow must never punish a user for a
// transient failure, but must still purge clearly dead tokens.
//
// # Error Handling
//
// The Controller is the error boundary. No error escapes Login, Register,
// LoginWithGoogle, Logout or Restore; every outcome is a structured Result
// carrying a display-ready message and an explicit navigation intent. The
// host consumes RedirectTo instead of the core performing navigation.
//
// # Usage
//
//	ctrl := session.New(apiClient, google, store,
//	    session.WithLogger(log),
//	)
//	ctx = session.WithController(ctx, ctrl)
//
//	ctrl.Restore(ctx)
//
//	res := ctrl.Login(ctx, email, password, returnTo)
//	if res.Success {
//	    navigate(res.RedirectTo)
//	} else {
//	    showError(res.Error)
//	}
//
// Subscribers observe state changes:
//
//	sub := ctrl.Subscribe(ctx)
//	for snap := range sub.Updates() {
//	    render(snap.Status, snap.Session)
//	}
package session
