package user

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// OAuthProvider identifies the external identity provider a user registered
// with. Empty for email/password accounts.
type OAuthProvider string

const (
	ProviderNone   OAuthProvider = ""
	ProviderGoogle OAuthProvider = "google"
)
