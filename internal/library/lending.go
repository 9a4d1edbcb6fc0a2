// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"biblioteca/internal/models"
	"biblioteca/internal/store"
	"biblioteca/internal/validate"
)

// LoanQuery selects loans for ListLoans. An empty Status means all loans;
// a nil PatronID means every patron.
type LoanQuery struct {
	Status   models.LoanStatus
	PatronID *uuid.UUID
	BookID   *uuid.UUID
}

// Checkout lends one copy of a book to a patron. The book row stays locked
// until the loan is written and the counter decremented, so concurrent
// checkouts of the same book run one after another and at most
// available_copies of them succeed.
func (s *Service) Checkout(ctx context.Context, bookID, patronID uuid.UUID) (*models.Loan, error) {
	var loan *models.Loan
	err := s.withTx(ctx, func(u *unit) error {
		book, err := u.books.LockByID(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return fmt.Errorf("checkout book: %w", models.ErrNotFound)
		}

		patron, err := u.users.FindByID(ctx, patronID)
		if err != nil {
			return err
		}
		if patron == nil {
			return fmt.Errorf("checkout patron: %w", models.ErrNotFound)
		}

		open, err := u.loans.HasOpen(ctx, patronID, bookID, uuid.Nil)
		if err != nil {
			return err
		}

		candidate := &models.Loan{
			ID:           uuid.New(),
			PatronID:     patronID,
			BookID:       bookID,
			CheckedOutAt: s.timestamp(),
		}
		facts := validate.LoanFacts{
			OpenLoanExists:  open,
			AvailableCopies: book.AvailableCopies,
			IsNew:           true,
		}
		if err := validate.Loan(candidate, facts).Err(); err != nil {
			return err
		}

		loan, err = u.loans.Create(ctx, candidate)
		if err != nil {
			return err
		}
		if _, err := u.books.AdjustCopies(ctx, bookID, -1); err != nil {
			return err
		}

		loan.BookTitle = book.Title
		loan.PatronUsername = patron.Username
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("book checked out", "loan_id", loan.ID, "book_id", bookID, "patron_id", patronID)
	return loan, nil
}

// RegisterReturn closes an open loan and puts its copy back. Closing the
// loan and incrementing the counter commit together. A loan that is
// already closed fails with models.ErrAlreadyReturned and nothing changes.
func (s *Service) RegisterReturn(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	var loan *models.Loan
	err := s.withTx(ctx, func(u *unit) error {
		var err error
		loan, err = u.loans.LockByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("register return: %w", models.ErrNotFound)
		}
		if !loan.IsOpen() {
			return fmt.Errorf("register return: %w", models.ErrAlreadyReturned)
		}

		open, err := u.loans.HasOpen(ctx, loan.PatronID, loan.BookID, loan.ID)
		if err != nil {
			return err
		}

		loan.Close(s.timestamp())
		if err := validate.Loan(loan, validate.LoanFacts{OpenLoanExists: open}).Err(); err != nil {
			return err
		}

		if err := u.loans.MarkReturned(ctx, loan); err != nil {
			return err
		}
		_, err = u.books.AdjustCopies(ctx, loan.BookID, 1)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("book returned", "loan_id", loan.ID, "book_id", loan.BookID, "patron_id", loan.PatronID)
	return loan, nil
}

// ReturnBook closes the open loan a patron holds for a book.
func (s *Service) ReturnBook(ctx context.Context, bookID, patronID uuid.UUID) (*models.Loan, error) {
	open, err := s.loans.FindOpen(ctx, patronID, bookID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, fmt.Errorf("return book: %w", models.ErrNotFound)
	}
	return s.RegisterReturn(ctx, open.ID)
}

// GetLoan returns one loan.
func (s *Service) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	l, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("get loan: %w", models.ErrNotFound)
	}
	return l, nil
}

// ListLoans returns the loans matching q, newest checkout first.
func (s *Service) ListLoans(ctx context.Context, q LoanQuery) ([]models.Loan, error) {
	status := q.Status
	if status == "" {
		status = models.LoanStatusAll
	}
	if !status.Valid() {
		return nil, fmt.Errorf("list loans: unknown status %q", status)
	}
	return s.loans.List(ctx, store.LoanFilter{
		Status:   status,
		PatronID: q.PatronID,
		BookID:   q.BookID,
	})
}
