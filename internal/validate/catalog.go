// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"biblioteca/internal/models"
)

// Category checks a category before it is written.
func Category(c *models.Category) Errors {
	var errs Errors
	errs.check(!blank(c.Name), "name", models.ErrEmptyName)
	return errs
}

// Book checks a book before it is written. Categories must already be
// attached to b.
func Book(b *models.Book) Errors {
	var errs Errors
	errs.check(!blank(b.Title), "title", models.ErrEmptyField)
	errs.check(!blank(b.Author), "author", models.ErrEmptyField)
	errs.check(b.AvailableCopies >= 0, "available_copies", models.ErrNegativeInventory)
	errs.check(Identifier(b.Identifier), "identifier", models.ErrInvalidIdentifier)
	errs.check(len(b.Categories) > 0, "categories", models.ErrMissingCategories)
	return errs
}

// Identifier reports whether s is a catalog code: exactly 10 or 13 ASCII digits.
func Identifier(s string) bool {
	if len(s) != 10 && len(s) != 13 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
