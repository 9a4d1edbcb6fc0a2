// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus selects loans by their open/closed state in list queries.
type LoanStatus string

const (
	LoanStatusAll    LoanStatus = "all"
	LoanStatusOpen   LoanStatus = "open"
	LoanStatusClosed LoanStatus = "closed"
)

// Valid reports whether s is one of the known filters.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusAll, LoanStatusOpen, LoanStatusClosed:
		return true
	}
	return false
}

// Loan records one copy of a book lent to a patron. A loan is open until
// Returned is set; closed loans are kept as lending history.
type Loan struct {
	ID           uuid.UUID  `json:"id"`
	PatronID     uuid.UUID  `json:"patron_id"`
	BookID       uuid.UUID  `json:"book_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	Returned     bool       `json:"returned"`

	// Joined display fields, filled by list queries.
	BookTitle      string `json:"book_title,omitempty"`
	PatronUsername string `json:"patron_username,omitempty"`
}

// IsOpen reports whether the loan still holds a copy.
func (l *Loan) IsOpen() bool {
	return !l.Returned
}

// Close marks the loan as returned at the given time.
func (l *Loan) Close(at time.Time) {
	l.Returned = true
	l.ReturnedAt = &at
}
