package usecase

import (
	"context"

	"github.com/google/uuid"

	"nazca360/internal/domain/user"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/pkg/jwt"
)

// TokenValidator backs the auth middleware. A token is good only while its
// JWT is valid and its Redis session is still alive; the Touch renews the
// inactivity window as a side effect.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, user.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
	sessions   SessionStore
}

func NewTokenValidator(jwtService *jwt.Service, sessions SessionStore) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
		sessions:   sessions,
	}
}

func (t *tokenValidatorImpl) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", errs.ErrUnauthorized
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", errs.ErrUnauthorized
	}

	alive, err := t.sessions.Touch(ctx, tokenString)
	if err != nil {
		return uuid.Nil, "", errs.Wrap(err, "failed to touch session")
	}
	if !alive {
		return uuid.Nil, "", errs.ErrUnauthorized
	}

	return claims.UserID, role, nil
}
