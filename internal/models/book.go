// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCopies is the available-copies count a new book starts with
// when none is given.
const DefaultCopies = 1

// Book is a catalog entry. AvailableCopies is the lendable inventory and
// is the only field mutated by the loan lifecycle.
type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublishedOn     time.Time `json:"published_on"`
	Identifier      string    `json:"identifier"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Populated by store methods from the book_categories join table.
	Categories []Category `json:"categories"`
}

// CategoryIDs returns the IDs of the attached categories.
func (b *Book) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// IsAvailable reports whether at least one copy can be lent.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}
