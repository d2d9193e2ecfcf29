package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by the Postgres repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = pgx.ErrNoRows
	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrVersionConflict is returned when a complaint changed since it was read.
	ErrVersionConflict = errors.New("complaint was modified concurrently")
)

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// lookupErr reports a malformed id as a missing record.
func lookupErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresent {
		return ErrNotFound
	}
	return err
}
