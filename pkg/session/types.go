package session

// Role identifies a user's role within the application. The set is closed:
// every role-based branch in this package switches exhaustively over these
// constants so new roles surface at compile time rather than at runtime.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleClubManager Role = "clubManager"
	RoleMember      Role = "member"
)

// Valid reports whether the role is one of the known constants. Unknown
// roles still deserialize (the backend is the source of truth for the user
// record) but are routed like members.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClubManager, RoleMember:
		return true
	default:
		return false
	}
}

// Status describes where the session state machine currently is.
//
//	unknown → restoring → {authenticated, unauthenticated}
type Status string

const (
	// StatusUnknown is the pre-restoration state right after construction.
	StatusUnknown Status = "unknown"
	// StatusRestoring means boot-time restoration is in progress.
	StatusRestoring Status = "restoring"
	// StatusAuthenticated means a token and user are held in memory and the
	// token is present in the backing store.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated means no session is held.
	StatusUnauthenticated Status = "unauthenticated"
)

// User is the application user record as issued by the backend.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// Session is the authenticated identity and credential held by the client.
type Session struct {
	Token string
	User  User
}
