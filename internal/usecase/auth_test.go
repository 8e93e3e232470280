//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"nazca360/internal/domain/user"
	"nazca360/internal/infra"
	"nazca360/internal/infra/oauth"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/pkg/jwt"
	"nazca360/internal/pkg/password"
	"nazca360/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	saved   map[string]uuid.UUID
	deleted []string
	revoked []uuid.UUID
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{saved: make(map[string]uuid.UUID)}
}

func (s *fakeSessionStore) Save(_ context.Context, token string, userID uuid.UUID) error {
	s.saved[token] = userID
	return nil
}

func (s *fakeSessionStore) Touch(_ context.Context, token string) (bool, error) {
	_, ok := s.saved[token]
	return ok, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(s.saved, token)
	s.deleted = append(s.deleted, token)
	return nil
}

func (s *fakeSessionStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	s.revoked = append(s.revoked, userID)
	for token, id := range s.saved {
		if id == userID {
			delete(s.saved, token)
		}
	}
	return nil
}

type sentMail struct {
	to, token string
}

type fakeMailer struct {
	verifications []sentMail
	resets        []sentMail
}

func (m *fakeMailer) SendVerificationEmail(to, token string) error {
	m.verifications = append(m.verifications, sentMail{to: to, token: token})
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to, token string) error {
	m.resets = append(m.resets, sentMail{to: to, token: token})
	return nil
}

type fakeGoogle struct {
	profile *oauth.GoogleProfile
	err     error
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g *fakeGoogle) Exchange(_ context.Context, _ string) (*oauth.GoogleProfile, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.profile, nil
}

type authFixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionStore
	mailer   *fakeMailer
	google   *fakeGoogle
	jwt      *jwt.Service
	uc       usecase.AuthUseCase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionStore(),
		mailer:   &fakeMailer{},
		google:   &fakeGoogle{},
		jwt:      jwt.NewService("test-secret-key", 30*time.Minute),
	}
	f.uc = usecase.NewAuthUseCase(f.users, f.sessions, f.mailer, f.google, f.jwt)
	return f
}

func (f *authFixture) addVerifiedUser(t *testing.T, email, plainPassword string) *user.User {
	t.Helper()
	addr, err := user.NewEmail(email)
	require.NoError(t, err)
	hash, err := password.Hash(plainPassword)
	require.NoError(t, err)
	u := user.Reconstruct(uuid.New(), addr, "Test User", hash, "",
		user.RoleUser, true, user.ProviderNone, time.Now())
	f.users.add(u)
	return u
}

func credentials(t *testing.T, email, plain string) user.Credentials {
	t.Helper()
	creds, err := user.NewCredentials(email, plain)
	require.NoError(t, err)
	return creds
}

func TestRegister(t *testing.T) {
	ctx := t.Context()

	t.Run("new account starts unverified and gets a mail", func(t *testing.T) {
		f := newAuthFixture(t)

		rm, err := f.uc.Register(ctx, credentials(t, "maria@example.com", "s3cret-password"), "Maria")
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", rm.Email)
		assert.False(t, rm.Verified)

		require.Len(t, f.mailer.verifications, 1)
		assert.Equal(t, "maria@example.com", f.mailer.verifications[0].to)
	})

	t.Run("登録済みメールアドレスは重複エラー", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.createErr = infra.WrapRepoErr("duplicate email", nil, infra.KindDuplicateKey)

		_, err := f.uc.Register(ctx, credentials(t, "maria@example.com", "s3cret-password"), "Maria")
		assert.ErrorIs(t, err, errs.ErrEmailTaken)
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := t.Context()

	t.Run("valid link flips the verified flag", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateEmailToken("maria@example.com", jwt.PurposeVerifyEmail, time.Hour)
		require.NoError(t, err)

		assert.NoError(t, f.uc.VerifyEmail(ctx, token))
	})

	t.Run("reset token does not verify", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateEmailToken("maria@example.com", jwt.PurposePasswordReset, time.Hour)
		require.NoError(t, err)

		assert.ErrorIs(t, f.uc.VerifyEmail(ctx, token), errs.ErrInvalidToken)
	})
}

func TestLogin(t *testing.T) {
	ctx := t.Context()

	t.Run("verified user gets a session token", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.addVerifiedUser(t, "maria@example.com", "s3cret-password")

		token, rm, err := f.uc.Login(ctx, credentials(t, "maria@example.com", "s3cret-password"))
		require.NoError(t, err)
		assert.Equal(t, u.ID(), rm.ID)
		assert.Equal(t, u.ID(), f.sessions.saved[token])
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addVerifiedUser(t, "maria@example.com", "s3cret-password")

		_, _, err := f.uc.Login(ctx, credentials(t, "maria@example.com", "wrong-password"))
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("unknown address looks like bad credentials", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.uc.Login(ctx, credentials(t, "nobody@example.com", "s3cret-password"))
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("メール未確認ならログイン不可", func(t *testing.T) {
		f := newAuthFixture(t)
		addr, err := user.NewEmail("maria@example.com")
		require.NoError(t, err)
		hash, err := password.Hash("s3cret-password")
		require.NoError(t, err)
		f.users.add(user.Reconstruct(uuid.New(), addr, "Maria", hash, "",
			user.RoleUser, false, user.ProviderNone, time.Now()))

		_, _, err = f.uc.Login(ctx, credentials(t, "maria@example.com", "s3cret-password"))
		assert.ErrorIs(t, err, errs.ErrEmailNotVerified)
	})

	t.Run("Google account must use the OAuth flow", func(t *testing.T) {
		f := newAuthFixture(t)
		addr, err := user.NewEmail("maria@example.com")
		require.NoError(t, err)
		f.users.add(user.NewOAuthUser(addr, "Maria", "", user.ProviderGoogle))

		_, _, err = f.uc.Login(ctx, credentials(t, "maria@example.com", "s3cret-password"))
		assert.ErrorIs(t, err, errs.ErrOAuthAccount)
	})
}

func TestGoogleLogin(t *testing.T) {
	ctx := t.Context()

	t.Run("first sight provisions a verified account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.google.profile = &oauth.GoogleProfile{
			Email: "maria@gmail.com", Name: "Maria", Picture: "https://example.com/pic.jpg",
		}

		token, rm, err := f.uc.GoogleLogin(ctx, "auth-code")
		require.NoError(t, err)
		assert.True(t, rm.Verified)
		assert.NotEmpty(t, f.sessions.saved[token])

		// Next login finds the same account instead of creating another.
		_, again, err := f.uc.GoogleLogin(ctx, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, rm.ID, again.ID)
	})

	t.Run("provider outage", func(t *testing.T) {
		f := newAuthFixture(t)
		f.google.err = infra.WrapRepoErr("token endpoint unreachable", nil, infra.KindUpstream)

		_, _, err := f.uc.GoogleLogin(ctx, "auth-code")
		assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := t.Context()

	t.Run("forgot-password never reveals whether the address exists", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.NoError(t, f.uc.ForgotPassword(ctx, "nobody@example.com"))
		assert.Empty(t, f.mailer.resets)
	})

	t.Run("known address gets a reset mail", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addVerifiedUser(t, "maria@example.com", "s3cret-password")

		require.NoError(t, f.uc.ForgotPassword(ctx, "maria@example.com"))
		require.Len(t, f.mailer.resets, 1)
		assert.Equal(t, "maria@example.com", f.mailer.resets[0].to)
	})

	t.Run("OAuthアカウントにはリセットメールを送らない", func(t *testing.T) {
		f := newAuthFixture(t)
		addr, err := user.NewEmail("maria@gmail.com")
		require.NoError(t, err)
		f.users.add(user.NewOAuthUser(addr, "Maria", "", user.ProviderGoogle))

		require.NoError(t, f.uc.ForgotPassword(ctx, "maria@gmail.com"))
		assert.Empty(t, f.mailer.resets)
	})

	t.Run("reset revokes every live session", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.addVerifiedUser(t, "maria@example.com", "s3cret-password")
		token, _, err := f.uc.Login(ctx, credentials(t, "maria@example.com", "s3cret-password"))
		require.NoError(t, err)

		resetToken, err := f.jwt.GenerateEmailToken("maria@example.com", jwt.PurposePasswordReset, time.Hour)
		require.NoError(t, err)
		require.NoError(t, f.uc.ResetPassword(ctx, resetToken, "brand-new-password"))

		assert.Contains(t, f.sessions.revoked, u.ID())
		assert.NotContains(t, f.sessions.saved, token)
	})

	t.Run("verification token cannot reset a password", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.jwt.GenerateEmailToken("maria@example.com", jwt.PurposeVerifyEmail, time.Hour)
		require.NoError(t, err)

		err = f.uc.ResetPassword(ctx, token, "brand-new-password")
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	ctx := t.Context()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "maria@example.com", "s3cret-password")

	token, _, err := f.uc.Login(ctx, credentials(t, "maria@example.com", "s3cret-password"))
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(ctx, token))
	assert.NotContains(t, f.sessions.saved, token)
}
