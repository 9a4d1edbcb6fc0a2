// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"biblioteca/internal/database"
	"biblioteca/internal/models"
	"biblioteca/internal/store"
)

// testDB opens the test database and runs migrations. The test is
// skipped when PostgreSQL is unavailable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("POSTGRES_USER", "biblioteca"),
		envOr("POSTGRES_PASSWORD", "changeme"),
		envOr("POSTGRES_HOST", "localhost"),
		envOr("POSTGRES_PORT", "5432"),
		envOr("POSTGRES_DB", "biblioteca"),
	)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var identifierSeq atomic.Int64

// uniqueIdentifier returns a fresh 13-digit catalog code.
func uniqueIdentifier() string {
	n := time.Now().UnixNano()%1_000_000_000_000 + identifierSeq.Add(1)
	return fmt.Sprintf("9%012d", n%1_000_000_000_000)
}

// fixture bundles a service with helpers that clean up after the test.
type fixture struct {
	t   *testing.T
	db  *sql.DB
	svc *Service
	ctx context.Context
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	db := testDB(t)
	return &fixture{t: t, db: db, svc: New(db, opts...), ctx: context.Background()}
}

func (f *fixture) patron() *models.User {
	f.t.Helper()
	name := "lib-test-" + uuid.NewString()[:8]
	u, err := store.NewUserStore(f.db).Create(f.ctx, name, name+"@lib-test.local", "testpass123", models.RolePatron)
	if err != nil {
		f.t.Fatalf("create patron: %v", err)
	}
	f.t.Cleanup(func() { f.db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

func (f *fixture) category() *models.Category {
	f.t.Helper()
	c, err := f.svc.CreateCategory(f.ctx, CategoryInput{Name: "lib-test-" + uuid.NewString()[:8]})
	if err != nil {
		f.t.Fatalf("create category: %v", err)
	}
	f.t.Cleanup(func() { f.db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

func (f *fixture) book(copies int) *models.Book {
	f.t.Helper()
	cat := f.category()
	b, err := f.svc.CreateBook(f.ctx, BookInput{
		Title:       "Lending Test",
		Author:      "Test Author",
		PublishedOn: time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC),
		Identifier:  uniqueIdentifier(),
		CategoryIDs: []uuid.UUID{cat.ID},
		Copies:      &copies,
	})
	if err != nil {
		f.t.Fatalf("create book: %v", err)
	}
	f.t.Cleanup(func() { f.db.Exec("DELETE FROM books WHERE id = $1", b.ID) })
	return b
}

func (f *fixture) copies(bookID uuid.UUID) int {
	f.t.Helper()
	b, err := f.svc.GetBook(f.ctx, bookID)
	if err != nil {
		f.t.Fatalf("get book: %v", err)
	}
	return b.AvailableCopies
}

func (f *fixture) openLoans(patronID, bookID uuid.UUID) int {
	f.t.Helper()
	var n int
	err := f.db.QueryRow(
		"SELECT COUNT(*) FROM loans WHERE patron_id = $1 AND book_id = $2 AND NOT returned",
		patronID, bookID,
	).Scan(&n)
	if err != nil {
		f.t.Fatalf("count open loans: %v", err)
	}
	return n
}
