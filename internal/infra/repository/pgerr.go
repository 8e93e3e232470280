package repository

import (
	"errors"

	"nazca360/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error class mapping shared by the repositories.
func kindFor(err error) infra.RepositoryErrorKind {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return infra.KindDuplicateKey
		case "23503": // foreign_key_violation
			return infra.KindForeignKeyViolated
		}
	}
	return infra.KindDBFailure
}

func wrap(msg string, err error) error {
	return infra.WrapRepoErr(msg, err, kindFor(err))
}
