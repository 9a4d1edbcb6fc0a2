// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"biblioteca/internal/models"
	"biblioteca/internal/validate"
)

// CategoryInput carries the editable fields of a category. On update a
// nil Description keeps the stored value and an empty one clears it.
type CategoryInput struct {
	Name        string
	Description *string
}

// BookInput carries the fields of a new book. Copies defaults to
// models.DefaultCopies when nil.
type BookInput struct {
	Title       string
	Author      string
	PublishedOn time.Time
	Identifier  string
	CategoryIDs []uuid.UUID
	Copies      *int
}

// BookUpdate lists the book fields to change. Nil fields are left alone.
type BookUpdate struct {
	Title           *string
	Author          *string
	PublishedOn     *time.Time
	Identifier      *string
	AvailableCopies *int
	CategoryIDs     *[]uuid.UUID
}

// CreateCategory validates and stores a new category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: normalizeDescription(in.Description),
	}
	if err := validate.Category(c).Err(); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCategory renames a category and optionally replaces its description.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	var updated *models.Category
	err := s.withTx(ctx, func(u *unit) error {
		c, err := u.categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("update category: %w", models.ErrNotFound)
		}

		c.Name = strings.TrimSpace(in.Name)
		if in.Description != nil {
			c.Description = normalizeDescription(in.Description)
		}
		if err := validate.Category(c).Err(); err != nil {
			return err
		}

		updated, err = u.categories.Update(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category and detaches it from its books.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("delete category: %w", models.ErrNotFound)
	}
	return nil
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("get category: %w", models.ErrNotFound)
	}
	return c, nil
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// CreateBook validates and stores a new book with its categories. Every
// category ID must exist.
func (s *Service) CreateBook(ctx context.Context, in BookInput) (*models.Book, error) {
	copies := models.DefaultCopies
	if in.Copies != nil {
		copies = *in.Copies
	}

	var created *models.Book
	err := s.withTx(ctx, func(u *unit) error {
		b := &models.Book{
			Title:           strings.TrimSpace(in.Title),
			Author:          strings.TrimSpace(in.Author),
			PublishedOn:     in.PublishedOn,
			Identifier:      strings.TrimSpace(in.Identifier),
			AvailableCopies: copies,
		}

		cats, err := u.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return err
		}
		b.Categories = cats

		if err := validate.Book(b).Err(); err != nil {
			return err
		}

		created, err = u.books.Create(ctx, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateBook applies the non-nil fields of in to a book. The row is locked
// so an edit of available_copies cannot interleave with a checkout.
func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, in BookUpdate) (*models.Book, error) {
	var updated *models.Book
	err := s.withTx(ctx, func(u *unit) error {
		b, err := u.books.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("update book: %w", models.ErrNotFound)
		}

		if in.Title != nil {
			b.Title = strings.TrimSpace(*in.Title)
		}
		if in.Author != nil {
			b.Author = strings.TrimSpace(*in.Author)
		}
		if in.PublishedOn != nil {
			b.PublishedOn = *in.PublishedOn
		}
		if in.Identifier != nil {
			b.Identifier = strings.TrimSpace(*in.Identifier)
		}
		if in.AvailableCopies != nil {
			b.AvailableCopies = *in.AvailableCopies
		}
		if in.CategoryIDs != nil {
			cats, err := u.resolveCategories(ctx, *in.CategoryIDs)
			if err != nil {
				return err
			}
			b.Categories = cats
		}

		if err := validate.Book(b).Err(); err != nil {
			return err
		}

		if err := u.books.Update(ctx, b); err != nil {
			return err
		}
		if in.CategoryIDs != nil {
			if err := u.books.SetCategories(ctx, b.ID, b.CategoryIDs()); err != nil {
				return err
			}
		}

		updated, err = u.books.FindByID(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes a book. Its loan history goes with it.
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.books.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("delete book: %w", models.ErrNotFound)
	}
	return nil
}

// GetBook returns one book with its categories.
func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("get book: %w", models.ErrNotFound)
	}
	return b, nil
}

// ListBooks returns every book with its categories.
func (s *Service) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx)
}

// resolveCategories loads the categories for ids, failing with
// models.ErrNotFound if any of them is missing.
func (u *unit) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	cats, err := u.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(cats) != len(ids) {
		return nil, fmt.Errorf("resolve categories: %w", models.ErrNotFound)
	}
	return cats, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// normalizeDescription maps a blank description to nil.
func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
