// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"biblioteca/internal/models"
)

// BookStore handles book rows and their category links.
type BookStore struct {
	db DBTX
}

// NewBookStore creates a new BookStore with the given database connection.
func NewBookStore(db DBTX) *BookStore {
	return &BookStore{db: db}
}

// WithTx returns a BookStore bound to tx.
func (s *BookStore) WithTx(tx *sql.Tx) *BookStore {
	return &BookStore{db: tx}
}

const bookColumns = `id, title, author, published_on, identifier, available_copies, created_at, updated_at`

func scanBook(scanner interface{ Scan(...any) error }) (*models.Book, error) {
	var b models.Book
	err := scanner.Scan(
		&b.ID, &b.Title, &b.Author, &b.PublishedOn, &b.Identifier,
		&b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all books ordered by title, each with its categories.
func (s *BookStore) List(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var items []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if err := s.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID retrieves a book with its categories. Returns nil if not found.
func (s *BookStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

// LockByID is FindByID with a row lock held until the surrounding
// transaction ends. Must be called on a store bound to a transaction.
func (s *BookStore) LockByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id)
}

func (s *BookStore) findOne(ctx context.Context, query string, id uuid.UUID) (*models.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find book by id: %w", translate(err))
	}

	books := []models.Book{*b}
	if err := s.attachCategories(ctx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// attachCategories loads the categories of every book in one query.
func (s *BookStore) attachCategories(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(books))
	index := make(map[uuid.UUID]int, len(books))
	for i, b := range books {
		ids[i] = b.ID
		index[b.ID] = i
		books[i].Categories = []models.Category{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bc.book_id, c.id, c.name, c.description, c.created_at, c.updated_at
		FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = ANY($1::uuid[])
		ORDER BY c.name
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("load book categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID uuid.UUID
		var c models.Category
		if err := rows.Scan(&bookID, &c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("scan book category: %w", err)
		}
		i := index[bookID]
		books[i].Categories = append(books[i].Categories, c)
	}
	return rows.Err()
}

// Create inserts a new book and links its categories. It should run in a
// transaction so a failed link does not leave an uncategorized book.
func (s *BookStore) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, published_on, identifier, available_copies)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookColumns,
		b.Title, b.Author, b.PublishedOn, b.Identifier, b.AvailableCopies,
	)
	result, err := scanBook(row)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", translate(err))
	}

	if err := s.SetCategories(ctx, result.ID, b.CategoryIDs()); err != nil {
		return nil, err
	}
	result.Categories = b.Categories
	return result, nil
}

// Update writes every editable column of b. Category links are not
// touched; use SetCategories.
func (s *BookStore) Update(ctx context.Context, b *models.Book) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = $1, author = $2, published_on = $3, identifier = $4,
			available_copies = $5, updated_at = NOW()
		WHERE id = $6
	`, b.Title, b.Author, b.PublishedOn, b.Identifier, b.AvailableCopies, b.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", translate(err))
	}
	return nil
}

// SetCategories replaces the category links of a book. Unknown category
// IDs fail with models.ErrNotFound.
func (s *BookStore) SetCategories(ctx context.Context, bookID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM book_categories WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("clear book categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_categories (book_id, category_id)
		SELECT $1::uuid, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, bookID, pq.Array(uuidStrings(categoryIDs)))
	if err != nil {
		return fmt.Errorf("set book categories: %w", translate(err))
	}
	return nil
}

// AdjustCopies adds delta to the available-copies counter and returns the
// new value. A result below zero fails with models.ErrNegativeInventory and
// a missing book with models.ErrNotFound.
func (s *BookStore) AdjustCopies(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var copies int
	err := s.db.QueryRowContext(ctx, `
		UPDATE books SET available_copies = available_copies + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING available_copies
	`, delta, id).Scan(&copies)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("adjust copies: %w", models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust copies: %w", translate(err))
	}
	return copies, nil
}

// Delete removes a book by ID. Its loans and category links cascade.
// Reports whether a row was deleted.
func (s *BookStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete book rows: %w", err)
	}
	return n > 0, nil
}
