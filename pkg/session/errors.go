package session

// User-facing failure messages. The controller is the error boundary: every
// failure surfaces as one of these (or a server-supplied message), never as
// a raw error chain or provider-internal code.
const (
	msgAuthFailed     = "Authentication failed. Please try again."
	msgGoogleFailed   = "Google sign-in failed. Please try again."
	msgNetworkFailure = "Cannot reach the authentication service. Please check that the backend is available."
)
