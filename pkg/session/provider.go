package session

import "context"

// ProviderErrorCode is the closed set of normalized identity provider
// failure codes. Provider adapters must map every provider-specific failure
// onto one of these before it leaves the adapter.
type ProviderErrorCode string

const (
	// ProviderPopupBlocked means the in-page popup could not be opened.
	ProviderPopupBlocked ProviderErrorCode = "popup_blocked"
	// ProviderPopupClosed means the user dismissed the popup before
	// completing sign-in.
	ProviderPopupClosed ProviderErrorCode = "popup_closed_by_user"
	// ProviderNetworkError means the provider could not be reached.
	ProviderNetworkError ProviderErrorCode = "network_error"
	// ProviderOther covers every unclassified provider failure.
	ProviderOther ProviderErrorCode = "other"
)

// ProviderError is a normalized identity provider failure.
type ProviderError struct {
	Code    ProviderErrorCode
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// ProviderUser is the identity returned by a federated sign-in flow before
// it has been exchanged for this system's own session.
type ProviderUser struct {
	IDToken  string
	Email    string
	Name     string
	PhotoURL string
}

// Provider wraps a federated identity provider with two mutually exclusive
// sign-in flows and a boot-time redirect resolver. Implementations must
// return *ProviderError from SignInPopup so the controller can branch on the
// closed code set.
type Provider interface {
	// SignInPopup runs the in-page popup flow and resolves with the signed-in
	// provider user, or fails with a *ProviderError.
	SignInPopup(ctx context.Context) (*ProviderUser, error)

	// SignInRedirect triggers a full navigation away to the provider. In a
	// browser the calling context unloads and the call never returns
	// control; implementations for other hosts emit the navigation and
	// return.
	SignInRedirect(ctx context.Context) error

	// ResolveRedirectResult is called once per application load. It returns
	// the signed-in provider user when this load is the return leg of a
	// redirect flow, and (nil, nil) otherwise. It must be safe to call
	// unconditionally: "no redirect in flight" is not an error.
	ResolveRedirectResult(ctx context.Context) (*ProviderUser, error)
}
