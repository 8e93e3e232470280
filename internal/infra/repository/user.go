package repository

import (
	"context"
	"time"

	"nazca360/internal/domain/user"
	"nazca360/internal/infra/db"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(db db.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, picture, role, verified, oauth_provider, created_at`

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, picture, role, verified, oauth_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID(), u.Email().Value(), u.Name(), u.PasswordHash(), u.Picture(),
		u.Role().String(), u.Verified(), string(u.Provider()),
	)
	if err != nil {
		return wrap("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) SetVerified(ctx context.Context, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET verified = TRUE WHERE email = $1`, email)
	if err != nil {
		return false, wrap("failed to mark user verified", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return false, wrap("failed to update password", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*readmodel.AuthorizedUserRM, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("failed to list users", err)
	}
	defer rows.Close()

	var result []*readmodel.AuthorizedUserRM
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ToAuthorizedUserRM(u))
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to iterate users", err)
	}
	return result, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, wrap("failed to count users", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		id           uuid.UUID
		email        string
		name         string
		passwordHash string
		picture      string
		role         string
		verified     bool
		provider     string
		createdAt    time.Time
	)
	if err := row.Scan(&id, &email, &name, &passwordHash, &picture, &role, &verified, &provider, &createdAt); err != nil {
		return nil, wrap("failed to scan user", err)
	}

	emailVO, err := user.NewEmail(email)
	if err != nil {
		return nil, wrap("stored email is malformed", err)
	}
	roleVO, err := user.NewRole(role)
	if err != nil {
		return nil, wrap("stored role is malformed", err)
	}

	return user.Reconstruct(id, emailVO, name, passwordHash, picture, roleVO, verified, user.OAuthProvider(provider), createdAt), nil
}

func ToAuthorizedUserRM(u *user.User) *readmodel.AuthorizedUserRM {
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
