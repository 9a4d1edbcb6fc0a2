// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"biblioteca/internal/database"
	"biblioteca/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "biblioteca")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "biblioteca")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniqueIdentifier returns a 13-digit catalog code that is very unlikely
// to collide with other test runs.
func uniqueIdentifier() string {
	return fmt.Sprintf("%013d", time.Now().UnixNano()%10_000_000_000_000)
}

// createTestUser inserts a patron and removes it when the test ends.
func createTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	username := "store-test-" + uuid.NewString()[:8]
	u, err := NewUserStore(db).Create(context.Background(), username, username+"@store-test.local", "testpass123", models.RolePatron)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// createTestCategory inserts a category and removes it when the test ends.
func createTestCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{Name: "store-test-" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// createTestBook inserts a book in one category with the given copies.
func createTestBook(t *testing.T, db *sql.DB, copies int) *models.Book {
	t.Helper()
	cat := createTestCategory(t, db)
	b, err := NewBookStore(db).Create(context.Background(), &models.Book{
		Title:           "Store Test Book",
		Author:          "Test Author",
		PublishedOn:     time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
		Identifier:      uniqueIdentifier(),
		AvailableCopies: copies,
		Categories:      []models.Category{*cat},
	})
	if err != nil {
		t.Fatalf("create test book: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM books WHERE id = $1", b.ID) })
	return b
}

// testNow returns the current time at the precision PostgreSQL stores.
func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
