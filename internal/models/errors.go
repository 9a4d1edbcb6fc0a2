// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

// Validation errors. Detected before anything is written.
var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrEmptyField        = errors.New("field must not be empty")
	ErrInvalidIdentifier = errors.New("identifier must be 10 or 13 digits")
	ErrNegativeInventory = errors.New("available copies must not be negative")
	ErrInvalidReturnDate = errors.New("return date precedes checkout date")
	ErrMissingReturnDate = errors.New("returned loan has no return date")
	ErrMissingCategories = errors.New("book needs at least one category")
)

// Conflict errors. Business-rule rejections; no state was changed.
var (
	ErrDuplicateOpenLoan   = errors.New("patron already holds an open loan for this book")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrAlreadyReturned     = errors.New("loan already returned")
	ErrDuplicateName       = errors.New("category name already exists")
	ErrDuplicateIdentifier = errors.New("book identifier already exists")
	ErrDuplicateUsername   = errors.New("username already exists")
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBusy is returned when a row lock could not be acquired in time.
	// The operation changed nothing and may be retried.
	ErrBusy = errors.New("resource busy, retry later")
)

// Family classifies an error for callers that only care about its kind.
type Family string

const (
	FamilyNone       Family = ""
	FamilyValidation Family = "validation"
	FamilyConflict   Family = "conflict"
	FamilyNotFound   Family = "not_found"
	FamilyTransient  Family = "transient"
	FamilyInternal   Family = "internal"
)

var (
	validationErrs = []error{
		ErrEmptyName, ErrEmptyField, ErrInvalidIdentifier, ErrNegativeInventory,
		ErrInvalidReturnDate, ErrMissingReturnDate, ErrMissingCategories,
	}
	conflictErrs = []error{
		ErrDuplicateOpenLoan, ErrNoCopiesAvailable, ErrAlreadyReturned,
		ErrDuplicateName, ErrDuplicateIdentifier, ErrDuplicateUsername,
	}
)

// FamilyOf returns the family of err. Validation takes precedence when an
// error carries several kinds.
func FamilyOf(err error) Family {
	if err == nil {
		return FamilyNone
	}
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return FamilyValidation
		}
	}
	for _, target := range conflictErrs {
		if errors.Is(err, target) {
			return FamilyConflict
		}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return FamilyNotFound
	case errors.Is(err, ErrBusy):
		return FamilyTransient
	}
	return FamilyInternal
}

// codes is ordered so that an error carrying several kinds reports the
// first one, which matches the order checks run in.
var codes = []struct {
	code string
	err  error
}{
	{"duplicate_open_loan", ErrDuplicateOpenLoan},
	{"invalid_return_date", ErrInvalidReturnDate},
	{"missing_return_date", ErrMissingReturnDate},
	{"no_copies_available", ErrNoCopiesAvailable},
	{"already_returned", ErrAlreadyReturned},
	{"empty_name", ErrEmptyName},
	{"empty_field", ErrEmptyField},
	{"negative_inventory", ErrNegativeInventory},
	{"invalid_identifier", ErrInvalidIdentifier},
	{"missing_categories", ErrMissingCategories},
	{"duplicate_name", ErrDuplicateName},
	{"duplicate_identifier", ErrDuplicateIdentifier},
	{"duplicate_username", ErrDuplicateUsername},
	{"not_found", ErrNotFound},
	{"busy", ErrBusy},
}

// Code returns a stable machine-readable code for the first known kind
// in err, or "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
