package session

import "time"

// Config holds session controller configuration.
type Config struct {
	// TokenKey is the store key holding the raw bearer token
	TokenKey string `env:"AUTH_TOKEN_KEY" envDefault:"authToken"`

	// UserKey is the store key holding the JSON-serialized user record
	UserKey string `env:"AUTH_USER_KEY" envDefault:"authUser"`

	// ReturnToKey is the flash key carrying the post-auth destination across
	// a redirect-based sign-in
	ReturnToKey string `env:"AUTH_RETURN_TO_KEY" envDefault:"authReturnTo"`

	// ReturnToTTL bounds how long a pending redirect destination survives
	ReturnToTTL time.Duration `env:"AUTH_RETURN_TO_TTL" envDefault:"10m"`

	// Role-based destinations used by the centralized routing rule
	AdminDestination   string `env:"AUTH_ADMIN_DESTINATION" envDefault:"/admin"`
	ManagerDestination string `env:"AUTH_MANAGER_DESTINATION" envDefault:"/manager"`
	MemberDestination  string `env:"AUTH_MEMBER_DESTINATION" envDefault:"/member"`

	// SignInDestination is where logout sends the user
	SignInDestination string `env:"AUTH_SIGNIN_DESTINATION" envDefault:"/signin"`
}

// DefaultConfig returns default controller configuration.
func DefaultConfig() Config {
	return Config{
		TokenKey:           "authToken",
		UserKey:            "authUser",
		ReturnToKey:        "authReturnTo",
		ReturnToTTL:        10 * time.Minute,
		AdminDestination:   "/admin",
		ManagerDestination: "/manager",
		MemberDestination:  "/member",
		SignInDestination:  "/signin",
	}
}
