// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for the catalog, loan
// and user tables. Each store wraps a DBTX so the same methods run either
// directly on the pool or inside a caller-owned transaction.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"biblioteca/internal/models"
)

// DBTX is the subset of *sql.DB and *sql.Tx the stores need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgreSQL error codes the stores translate.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
	codeQueryCanceled        = "57014"
)

// constraintKinds maps named constraints to the error kind they enforce.
var constraintKinds = map[string]error{
	"categories_name_key":                models.ErrDuplicateName,
	"books_identifier_key":               models.ErrDuplicateIdentifier,
	"books_identifier_digits":            models.ErrInvalidIdentifier,
	"books_available_copies_nonnegative": models.ErrNegativeInventory,
	"users_username_key":                 models.ErrDuplicateUsername,
	"loans_one_open_per_patron_book":     models.ErrDuplicateOpenLoan,
	"loans_patron_book_checkout_key":     models.ErrDuplicateOpenLoan,
	"loans_return_after_checkout":        models.ErrInvalidReturnDate,
	"loans_returned_has_date":            models.ErrMissingReturnDate,
}

// dbError keeps the driver error for logging while exposing the domain
// kind to errors.Is.
type dbError struct {
	kind error
	err  error
}

func (e *dbError) Error() string   { return e.err.Error() }
func (e *dbError) Unwrap() []error { return []error{e.kind, e.err} }

// translate attaches a models error kind to known PostgreSQL failures.
// Unknown errors are returned unchanged.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure, codeQueryCanceled:
		return &dbError{kind: models.ErrBusy, err: err}
	case codeForeignKeyViolation:
		return &dbError{kind: models.ErrNotFound, err: err}
	case codeUniqueViolation, codeCheckViolation:
		if kind, ok := constraintKinds[pgErr.ConstraintName]; ok {
			return &dbError{kind: kind, err: err}
		}
	}
	return err
}

// IsTransient reports whether err is a lock or serialization failure that
// may succeed on retry.
func IsTransient(err error) bool {
	return errors.Is(translate(err), models.ErrBusy)
}
