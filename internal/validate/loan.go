// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"biblioteca/internal/models"
)

// LoanFacts is the state a loan is checked against. The caller reads it
// inside the same transaction that writes the loan.
type LoanFacts struct {
	// OpenLoanExists is true when another open loan (excluding the one
	// being checked) exists for the same patron and book.
	OpenLoanExists bool

	// AvailableCopies is the book's current counter, read under lock.
	AvailableCopies int

	// IsNew marks a loan that is about to be created.
	IsNew bool
}

// Loan checks a loan before any write. Rules run in a fixed order:
// one open loan per patron and book, return not before checkout, a
// returned loan carries its return time, and new loans need a free copy.
func Loan(l *models.Loan, facts LoanFacts) Errors {
	var errs Errors
	errs.check(!facts.OpenLoanExists, "", models.ErrDuplicateOpenLoan)
	if l.ReturnedAt != nil {
		errs.check(!l.ReturnedAt.Before(l.CheckedOutAt), "returned_at", models.ErrInvalidReturnDate)
	}
	if l.Returned {
		errs.check(l.ReturnedAt != nil, "returned_at", models.ErrMissingReturnDate)
	}
	if facts.IsNew {
		errs.check(facts.AvailableCopies > 0, "", models.ErrNoCopiesAvailable)
	}
	return errs
}
