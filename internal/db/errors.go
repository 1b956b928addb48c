package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors forming the store half of the error taxonomy. Anything
// the mapping below does not recognize is a transient store failure and is
// surfaced to the caller as retriable.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict: duplicate unique key")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapErr converts driver-level errors into the taxonomy. A foreign key
// violation means a referenced row does not exist, which callers see as
// not-found rather than as a storage fault.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
