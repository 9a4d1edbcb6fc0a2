// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"biblioteca/internal/models"
)

// LoanStore handles loan rows. Loans are only inserted and closed; the
// lending rules themselves live in the library package.
type LoanStore struct {
	db DBTX
}

// NewLoanStore creates a new LoanStore with the given database connection.
func NewLoanStore(db DBTX) *LoanStore {
	return &LoanStore{db: db}
}

// WithTx returns a LoanStore bound to tx.
func (s *LoanStore) WithTx(tx *sql.Tx) *LoanStore {
	return &LoanStore{db: tx}
}

// LoanFilter narrows List. Zero values mean no restriction.
type LoanFilter struct {
	Status   models.LoanStatus
	PatronID *uuid.UUID
	BookID   *uuid.UUID
}

const loanColumns = `id, patron_id, book_id, checked_out_at, returned_at, returned`

func scanLoan(scanner interface{ Scan(...any) error }) (*models.Loan, error) {
	var l models.Loan
	err := scanner.Scan(&l.ID, &l.PatronID, &l.BookID, &l.CheckedOutAt, &l.ReturnedAt, &l.Returned)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts an open loan. The open-loan unique index turns a racing
// duplicate into models.ErrDuplicateOpenLoan.
func (s *LoanStore) Create(ctx context.Context, l *models.Loan) (*models.Loan, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO loans (id, patron_id, book_id, checked_out_at, returned_at, returned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+loanColumns,
		l.ID, l.PatronID, l.BookID, l.CheckedOutAt, l.ReturnedAt, l.Returned,
	)
	result, err := scanLoan(row)
	if err != nil {
		return nil, fmt.Errorf("create loan: %w", translate(err))
	}
	return result, nil
}

// FindByID retrieves a loan by ID. Returns nil if not found.
func (s *LoanStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return s.findOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

// LockByID is FindByID with a row lock held until the surrounding
// transaction ends.
func (s *LoanStore) LockByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return s.findOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

// FindOpen returns the open loan for a patron and book, or nil.
func (s *LoanStore) FindOpen(ctx context.Context, patronID, bookID uuid.UUID) (*models.Loan, error) {
	return s.findOne(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE patron_id = $1 AND book_id = $2 AND NOT returned
	`, patronID, bookID)
}

func (s *LoanStore) findOne(ctx context.Context, query string, args ...any) (*models.Loan, error) {
	l, err := scanLoan(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", translate(err))
	}
	return l, nil
}

// HasOpen reports whether an open loan exists for the patron and book,
// ignoring the loan with ID exclude (uuid.Nil excludes nothing).
func (s *LoanStore) HasOpen(ctx context.Context, patronID, bookID, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE patron_id = $1 AND book_id = $2 AND NOT returned AND id <> $3
		)
	`, patronID, bookID, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open loan: %w", translate(err))
	}
	return exists, nil
}

// MarkReturned persists the closed state of l.
func (s *LoanStore) MarkReturned(ctx context.Context, l *models.Loan) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE loans SET returned = $1, returned_at = $2
		WHERE id = $3
	`, l.Returned, l.ReturnedAt, l.ID)
	if err != nil {
		return fmt.Errorf("mark loan returned: %w", translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark loan returned: %w", models.ErrNotFound)
	}
	return nil
}

// List returns loans matching f, newest checkout first, with the book
// title and patron username joined in.
func (s *LoanStore) List(ctx context.Context, f LoanFilter) ([]models.Loan, error) {
	var (
		where []string
		args  []any
	)
	switch f.Status {
	case models.LoanStatusOpen:
		where = append(where, "NOT l.returned")
	case models.LoanStatusClosed:
		where = append(where, "l.returned")
	}
	if f.PatronID != nil {
		args = append(args, *f.PatronID)
		where = append(where, fmt.Sprintf("l.patron_id = $%d", len(args)))
	}
	if f.BookID != nil {
		args = append(args, *f.BookID)
		where = append(where, fmt.Sprintf("l.book_id = $%d", len(args)))
	}

	query := `
		SELECT l.id, l.patron_id, l.book_id, l.checked_out_at, l.returned_at, l.returned,
		       b.title, u.username
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN users u ON u.id = l.patron_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY l.checked_out_at DESC, l.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var items []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(
			&l.ID, &l.PatronID, &l.BookID, &l.CheckedOutAt, &l.ReturnedAt, &l.Returned,
			&l.BookTitle, &l.PatronUsername,
		); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
