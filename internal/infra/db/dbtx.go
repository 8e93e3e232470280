package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the minimal query contract satisfied by both *pgxpool.Pool and
// pgx.Tx, letting repositories run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is an open transaction. pgx.Tx satisfies it.
type Tx interface {
	DBTX
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens transactions. Usecases depend on this instead of the pool
// so tests can substitute an in-memory fake.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type PoolBeginner struct {
	Pool *pgxpool.Pool
}

func NewBeginner(pool *pgxpool.Pool) Beginner {
	return PoolBeginner{Pool: pool}
}

func (p PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
