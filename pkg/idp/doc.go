// Package idp adapts federated identity providers to the session.Provider
// interface consumed by the session core.
//
// The Google adapter supports two sign-in shapes:
//
//	┌────────────┐   popup    ┌──────────────────┐
//	│ SignInPopup├───────────►│ loopback listener│──► ProviderUser
//	└────────────┘            └──────────────────┘
//
//	┌───────────────┐ navigate ┌─────────────────┐  next load  ┌───────────────────────┐
//	│ SignInRedirect├─────────►│ CallbackHandler │────────────►│ ResolveRedirectResult │
//	└───────────────┘          └─────────────────┘             └───────────────────────┘
//
// The popup flow completes within a single call: the consent screen opens in
// a separate window, a loopback HTTP listener receives the provider's
// redirect, and the adapter finishes the code exchange in-process. The
// redirect flow spans a full navigation: CSRF state and, later, the
// authorization code travel through a flash store, and the exchange is
// finished by ResolveRedirectResult on the next application load. Resolving
// is read-once; when no redirect is in flight it reports (nil, nil).
//
// All failures leaving this package are *session.ProviderError values on the
// closed code set: popup_blocked, popup_closed_by_user, network_error, other.
//
// # Usage
//
//	var cfg idp.GoogleConfig
//	config.MustLoad(&cfg)
//
//	google := idp.NewGoogle(cfg, flash, browser.OpenURL, shell.Navigate,
//		idp.WithLogger(log),
//	)
//
//	mux.Handle("/auth/google/", google.CallbackHandler())
//	ctrl := session.New(client, google, store)
package idp
