package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	id            uuid.UUID
	email         Email
	name          string
	passwordHash  string // empty for OAuth accounts
	picture       string
	role          Role
	verified      bool
	oauthProvider OAuthProvider
	createdAt     time.Time
}

// NewLocalUser creates an email/password account. It starts unverified: the
// verification link has to be followed before login is allowed.
func NewLocalUser(email Email, name, passwordHash string) *User {
	return &User{
		id:           uuid.New(),
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		role:         RoleUser,
		verified:     false,
	}
}

// NewOAuthUser creates a pre-verified account provisioned from an identity
// provider callback.
func NewOAuthUser(email Email, name, picture string, provider OAuthProvider) *User {
	return &User{
		id:            uuid.New(),
		email:         email,
		name:          name,
		picture:       picture,
		role:          RoleUser,
		verified:      true,
		oauthProvider: provider,
	}
}

func Reconstruct(
	id uuid.UUID,
	email Email,
	name, passwordHash, picture string,
	role Role,
	verified bool,
	provider OAuthProvider,
	createdAt time.Time,
) *User {
	return &User{
		id:            id,
		email:         email,
		name:          name,
		passwordHash:  passwordHash,
		picture:       picture,
		role:          role,
		verified:      verified,
		oauthProvider: provider,
		createdAt:     createdAt,
	}
}

func (u *User) IsAdmin() bool { return u.role == RoleAdmin }

func (u *User) IsOAuth() bool { return u.oauthProvider != ProviderNone }

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) Email() Email            { return u.email }
func (u *User) Name() string            { return u.name }
func (u *User) PasswordHash() string    { return u.passwordHash }
func (u *User) Picture() string         { return u.picture }
func (u *User) Role() Role              { return u.role }
func (u *User) Verified() bool          { return u.verified }
func (u *User) Provider() OAuthProvider { return u.oauthProvider }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
