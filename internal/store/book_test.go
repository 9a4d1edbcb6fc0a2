// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"biblioteca/internal/models"
)

func TestBookStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewBookStore(db)
	ctx := context.Background()

	created := createTestBook(t, db, 2)
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected book, got nil")
	}
	if found.AvailableCopies != 2 {
		t.Errorf("copies: got %d, want 2", found.AvailableCopies)
	}
	if len(found.Categories) != 1 || found.Categories[0].ID != created.Categories[0].ID {
		t.Errorf("categories: got %+v", found.Categories)
	}
	if found.PublishedOn.Year() != 2001 {
		t.Errorf("published year: got %d, want 2001", found.PublishedOn.Year())
	}

	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("FindByID (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing book")
	}
}

func TestBookStoreDuplicateIdentifier(t *testing.T) {
	db := testDB(t)
	s := NewBookStore(db)

	b := createTestBook(t, db, 1)
	dup := *b
	_, err := s.Create(context.Background(), &dup)
	if !errors.Is(err, models.ErrDuplicateIdentifier) {
		t.Errorf("expected ErrDuplicateIdentifier, got %v", err)
	}
}

func TestBookStoreUnknownCategory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	_, err = NewBookStore(db).WithTx(tx).Create(ctx, &models.Book{
		Title: "Orphan", Author: "Nobody", Identifier: uniqueIdentifier(),
		AvailableCopies: 1,
		Categories:      []models.Category{{ID: uuid.New()}},
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestBookStoreAdjustCopies(t *testing.T) {
	db := testDB(t)
	s := NewBookStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 1)

	copies, err := s.AdjustCopies(ctx, b.ID, -1)
	if err != nil {
		t.Fatalf("AdjustCopies(-1): %v", err)
	}
	if copies != 0 {
		t.Errorf("copies: got %d, want 0", copies)
	}

	_, err = s.AdjustCopies(ctx, b.ID, -1)
	if !errors.Is(err, models.ErrNegativeInventory) {
		t.Errorf("expected ErrNegativeInventory below zero, got %v", err)
	}

	copies, err = s.AdjustCopies(ctx, b.ID, 1)
	if err != nil {
		t.Fatalf("AdjustCopies(+1): %v", err)
	}
	if copies != 1 {
		t.Errorf("copies: got %d, want 1", copies)
	}

	_, err = s.AdjustCopies(ctx, uuid.New(), 1)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing book, got %v", err)
	}
}

func TestBookStoreUpdateAndSetCategories(t *testing.T) {
	db := testDB(t)
	s := NewBookStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 1)
	other := createTestCategory(t, db)

	b.Title = "Renamed"
	b.AvailableCopies = 5
	if err := s.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SetCategories(ctx, b.ID, []uuid.UUID{other.ID}); err != nil {
		t.Fatalf("SetCategories: %v", err)
	}

	found, err := s.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Title != "Renamed" || found.AvailableCopies != 5 {
		t.Errorf("Update not persisted: %+v", found)
	}
	if len(found.Categories) != 1 || found.Categories[0].ID != other.ID {
		t.Errorf("categories: got %+v, want only %s", found.Categories, other.ID)
	}
}

func TestBookStoreDeleteCascadesLoans(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	b := createTestBook(t, db, 1)
	u := createTestUser(t, db)
	loan, err := NewLoanStore(db).Create(ctx, &models.Loan{
		ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: testNow(),
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	deleted, err := NewBookStore(db).Delete(ctx, b.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}

	found, err := NewLoanStore(db).FindByID(ctx, loan.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("expected loan to be deleted with its book")
	}
}
