// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate holds the catalog and lending invariants as plain
// functions. Each check returns the full list of violated rules instead of
// stopping at the first, so callers can report every problem at once and
// the rules can be tested without a database.
package validate

import (
	"strings"
)

// Violation is one broken rule. Field names the offending attribute when
// the rule is about a single field.
type Violation struct {
	Field string
	Err   error
}

// Errors is an ordered list of violations. A nil Errors means valid.
type Errors []Violation

// Error joins the violation messages.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		if v.Field != "" {
			parts = append(parts, v.Field+": "+v.Err.Error())
			continue
		}
		parts = append(parts, v.Err.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes every violation to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, v := range e {
		errs[i] = v.Err
	}
	return errs
}

// Fields returns the field names in violation order, skipping entity-wide rules.
func (e Errors) Fields() []string {
	var fields []string
	for _, v := range e {
		if v.Field != "" {
			fields = append(fields, v.Field)
		}
	}
	return fields
}

// Err returns e as an error, or nil when there are no violations. Use it
// to avoid handing a typed nil to an error interface.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e *Errors) add(field string, err error) {
	*e = append(*e, Violation{Field: field, Err: err})
}

func (e *Errors) check(ok bool, field string, err error) {
	if !ok {
		e.add(field, err)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
