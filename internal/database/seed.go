// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin holds the credentials for the development admin account.
type SeedAdmin struct {
	Username string
	Email    string
	Password string
}

// sampleBooks is the starter catalog inserted on an empty database.
var sampleBooks = []struct {
	title, author, published, identifier, category string
	copies                                         int
}{
	{"Dom Casmurro", "Machado de Assis", "1899-01-01", "9788535910667", "Fiction", 2},
	{"Grande Sertão: Veredas", "João Guimarães Rosa", "1956-01-01", "9788535908473", "Fiction", 1},
	{"Estruturas de Dados", "Nivio Ziviani", "2004-01-01", "8522103909", "Computing", 3},
}

// Seed populates the database with initial development data: an admin
// user and a small catalog. Each part is skipped if its table already has
// rows, so calling Seed repeatedly is safe.
func Seed(db *sql.DB, admin SeedAdmin) error {
	if err := seedAdmin(db, admin); err != nil {
		return err
	}
	return seedCatalog(db)
}

func seedAdmin(db *sql.DB, admin SeedAdmin) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("admin user already present, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (username) DO NOTHING
	`, admin.Username, admin.Email, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "username", admin.Username)
	return nil
}

func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return fmt.Errorf("seed check books: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, b := range sampleBooks {
		var categoryID string
		err := tx.QueryRow(`
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, b.category).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", b.category, err)
		}

		var bookID string
		err = tx.QueryRow(`
			INSERT INTO books (title, author, published_on, identifier, available_copies)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (identifier) DO UPDATE SET identifier = EXCLUDED.identifier
			RETURNING id
		`, b.title, b.author, b.published, b.identifier, b.copies).Scan(&bookID)
		if err != nil {
			return fmt.Errorf("seed book %s: %w", b.identifier, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, bookID, categoryID); err != nil {
			return fmt.Errorf("seed book category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample catalog", "books", len(sampleBooks))
	return nil
}
