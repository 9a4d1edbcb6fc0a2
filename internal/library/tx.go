// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package library

import (
	"context"
	"errors"
	"fmt"

	"biblioteca/internal/models"
	"biblioteca/internal/store"
)

// unit is the set of stores bound to one transaction.
type unit struct {
	categories *store.CategoryStore
	books      *store.BookStore
	loans      *store.LoanStore
	users      *store.UserStore
}

// withTx runs fn inside a transaction with a bounded lock wait. The
// transaction commits only if fn returns nil; any error rolls back every
// write fn made.
func (s *Service) withTx(ctx context.Context, fn func(u *unit) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.lockTimeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	u := &unit{
		categories: s.categories.WithTx(tx),
		books:      s.books.WithTx(tx),
		loans:      s.loans.WithTx(tx),
		users:      s.users.WithTx(tx),
	}
	if err := fn(u); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if store.IsTransient(err) {
			return fmt.Errorf("commit transaction: %w", errors.Join(models.ErrBusy, err))
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
