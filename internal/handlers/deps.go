// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"biblioteca/internal/library"
	"biblioteca/internal/models"
	"biblioteca/internal/session"
)

// Library is the catalog and lending surface of library.Service used by
// the handlers.
type Library interface {
	CreateCategory(ctx context.Context, in library.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in library.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateBook(ctx context.Context, in library.BookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, in library.BookUpdate) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)

	Checkout(ctx context.Context, bookID, patronID uuid.UUID) (*models.Loan, error)
	RegisterReturn(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)
	ReturnBook(ctx context.Context, bookID, patronID uuid.UUID) (*models.Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	ListLoans(ctx context.Context, q library.LoanQuery) ([]models.Loan, error)
}

// ListCache stores rendered list responses between catalog writes.
// cache.ListCache satisfies it.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context, keys ...string)
}

// UserStore is the account lookup used by sign-in and registration.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, username, email, password string, role models.Role) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// SessionStore issues and revokes session cookies.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}
