// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package library implements the catalog operations and the loan
// lifecycle. Every write runs as one transaction; checkout serializes on
// the book row and return on the loan row, so the available-copies counter
// and the loan records always change together.
package library

import (
	"database/sql"
	"time"

	"biblioteca/internal/store"
)

// DefaultLockTimeout bounds how long a transaction waits for a row lock
// before the operation fails with models.ErrBusy.
const DefaultLockTimeout = 5 * time.Second

// Service is the entry point for catalog and lending operations.
type Service struct {
	db          *sql.DB
	categories  *store.CategoryStore
	books       *store.BookStore
	loans       *store.LoanStore
	users       *store.UserStore
	now         func() time.Time
	lockTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source used for checkout and return stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLockTimeout sets the per-transaction lock wait. Zero disables the
// limit and falls back to the server default.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.lockTimeout = d
	}
}

// New creates a Service backed by db.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:          db,
		categories:  store.NewCategoryStore(db),
		books:       store.NewBookStore(db),
		loans:       store.NewLoanStore(db),
		users:       store.NewUserStore(db),
		now:         time.Now,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time at the precision PostgreSQL keeps,
// so values compare equal after a round trip.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
