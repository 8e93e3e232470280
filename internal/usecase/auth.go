package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nazca360/internal/domain/user"
	"nazca360/internal/infra"
	"nazca360/internal/infra/oauth"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/pkg/jwt"
	"nazca360/internal/pkg/password"
	"nazca360/internal/usecase/readmodel"
)

const (
	verifyEmailTTL   = 24 * time.Hour
	passwordResetTTL = time.Hour
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	SetVerified(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error)
}

type SessionStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID) error
	Touch(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type Mailer interface {
	SendVerificationEmail(to, token string) error
	SendPasswordResetEmail(to, token string) error
}

type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.GoogleProfile, error)
}

type AuthUseCase interface {
	Register(ctx context.Context, creds user.Credentials, name string) (*readmodel.AuthorizedUserRM, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, creds user.Credentials) (string, *readmodel.AuthorizedUserRM, error)
	GoogleAuthURL(state string) string
	GoogleLogin(ctx context.Context, code string) (string, *readmodel.AuthorizedUserRM, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*readmodel.AuthorizedUserRM, error)
	Logout(ctx context.Context, token string) error
}

type authUseCaseImpl struct {
	userRepo   UserRepository
	sessions   SessionStore
	mailer     Mailer
	google     GoogleProvider
	jwtService *jwt.Service
}

func NewAuthUseCase(
	userRepo UserRepository,
	sessions SessionStore,
	mailer Mailer,
	google GoogleProvider,
	jwtService *jwt.Service,
) AuthUseCase {
	return &authUseCaseImpl{
		userRepo:   userRepo,
		sessions:   sessions,
		mailer:     mailer,
		google:     google,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Register(ctx context.Context, creds user.Credentials, name string) (*readmodel.AuthorizedUserRM, error) {
	hash, err := password.Hash(creds.Password().Value())
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash password")
	}

	newUser := user.NewLocalUser(creds.Email(), name, hash)
	if err := a.userRepo.Create(ctx, newUser); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.ErrEmailTaken
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	a.sendVerification(newUser.Email().Value())
	return toAuthorizedUserRM(newUser), nil
}

func (a *authUseCaseImpl) VerifyEmail(ctx context.Context, token string) error {
	email, err := a.jwtService.ValidateEmailToken(token, jwt.PurposeVerifyEmail)
	if err != nil {
		return errs.ErrInvalidToken
	}

	updated, err := a.userRepo.SetVerified(ctx, email)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !updated {
		return errs.ErrNotFound
	}
	return nil
}

func (a *authUseCaseImpl) Login(ctx context.Context, creds user.Credentials) (string, *readmodel.AuthorizedUserRM, error) {
	u, err := a.userRepo.FindByEmail(ctx, creds.Email().Value())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if u.IsOAuth() {
		return "", nil, errs.ErrOAuthAccount
	}
	if err := password.Compare(u.PasswordHash(), creds.Password().Value()); err != nil {
		return "", nil, errs.ErrInvalidCredentials
	}
	if !u.Verified() {
		return "", nil, errs.ErrEmailNotVerified
	}

	token, err := a.openSession(ctx, u)
	if err != nil {
		return "", nil, err
	}
	return token, toAuthorizedUserRM(u), nil
}

func (a *authUseCaseImpl) GoogleAuthURL(state string) string {
	return a.google.AuthCodeURL(state)
}

// GoogleLogin signs the user in with a Google authorization code, creating
// the account on first sight. Google accounts arrive pre-verified.
func (a *authUseCaseImpl) GoogleLogin(ctx context.Context, code string) (string, *readmodel.AuthorizedUserRM, error) {
	profile, err := a.google.Exchange(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindUpstream) {
			return "", nil, errs.ErrUpstreamUnavailable
		}
		return "", nil, errs.ErrInvalidCredentials
	}

	email, err := user.NewEmail(profile.Email)
	if err != nil {
		return "", nil, errs.ErrInvalidCredentials
	}

	u, err := a.userRepo.FindByEmail(ctx, email.Value())
	switch {
	case err == nil:
	case infra.IsKind(err, infra.KindNotFound):
		u = user.NewOAuthUser(email, profile.Name, profile.Picture, user.ProviderGoogle)
		if createErr := a.userRepo.Create(ctx, u); createErr != nil {
			return "", nil, errs.Mark(createErr, errs.ErrDatabaseOperationFailed)
		}
	default:
		return "", nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	token, err := a.openSession(ctx, u)
	if err != nil {
		return "", nil, err
	}
	return token, toAuthorizedUserRM(u), nil
}

// ForgotPassword always succeeds from the caller's view so the endpoint does
// not reveal which addresses are registered.
func (a *authUseCaseImpl) ForgotPassword(ctx context.Context, email string) error {
	u, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if u.IsOAuth() {
		return nil
	}

	token, err := a.jwtService.GenerateEmailToken(u.Email().Value(), jwt.PurposePasswordReset, passwordResetTTL)
	if err != nil {
		return errs.Wrap(err, "failed to generate reset token")
	}
	if err := a.mailer.SendPasswordResetEmail(u.Email().Value(), token); err != nil {
		slog.Warn("failed to send password reset email", "error", err)
	}
	return nil
}

func (a *authUseCaseImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := a.jwtService.ValidateEmailToken(token, jwt.PurposePasswordReset)
	if err != nil {
		return errs.ErrInvalidToken
	}

	pw, err := user.NewPassword(newPassword)
	if err != nil {
		return err
	}
	hash, err := password.Hash(pw.Value())
	if err != nil {
		return errs.Wrap(err, "failed to hash password")
	}

	updated, err := a.userRepo.UpdatePassword(ctx, email, hash)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !updated {
		return errs.ErrNotFound
	}

	// A reset invalidates every live session for the account.
	u, err := a.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if revokeErr := a.sessions.DeleteAllForUser(ctx, u.ID()); revokeErr != nil {
			slog.Warn("failed to revoke sessions after password reset", "error", revokeErr)
		}
	}
	return nil
}

func (a *authUseCaseImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*readmodel.AuthorizedUserRM, error) {
	u, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return toAuthorizedUserRM(u), nil
}

func (a *authUseCaseImpl) Logout(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

func (a *authUseCaseImpl) openSession(ctx context.Context, u *user.User) (string, error) {
	token, err := a.jwtService.GenerateAccessToken(u.ID(), u.Role())
	if err != nil {
		return "", errs.Wrap(err, "failed to generate access token")
	}
	if err := a.sessions.Save(ctx, token, u.ID()); err != nil {
		return "", errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return token, nil
}

func (a *authUseCaseImpl) sendVerification(email string) {
	token, err := a.jwtService.GenerateEmailToken(email, jwt.PurposeVerifyEmail, verifyEmailTTL)
	if err != nil {
		slog.Warn("failed to generate verification token", "error", err)
		return
	}
	if err := a.mailer.SendVerificationEmail(email, token); err != nil {
		slog.Warn("failed to send verification email", "email", email, "error", err)
	}
}

func toAuthorizedUserRM(u *user.User) *readmodel.AuthorizedUserRM {
	return &readmodel.AuthorizedUserRM{
		ID:        u.ID(),
		Email:     u.Email().Value(),
		Name:      u.Name(),
		Picture:   u.Picture(),
		Role:      u.Role().String(),
		Verified:  u.Verified(),
		Provider:  string(u.Provider()),
		CreatedAt: u.CreatedAt(),
	}
}
