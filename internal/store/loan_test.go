// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"biblioteca/internal/models"
)

func TestLoanStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewLoanStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 2)
	u := createTestUser(t, db)
	at := testNow()

	loan, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: at})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if loan.Returned || loan.ReturnedAt != nil {
		t.Errorf("new loan should be open: %+v", loan)
	}

	open, err := s.HasOpen(ctx, u.ID, b.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("HasOpen: %v", err)
	}
	if !open {
		t.Error("expected an open loan")
	}

	open, err = s.HasOpen(ctx, u.ID, b.ID, loan.ID)
	if err != nil {
		t.Fatalf("HasOpen (exclude): %v", err)
	}
	if open {
		t.Error("excluding the only open loan should report none")
	}

	found, err := s.FindOpen(ctx, u.ID, b.ID)
	if err != nil {
		t.Fatalf("FindOpen: %v", err)
	}
	if found == nil || found.ID != loan.ID {
		t.Fatalf("FindOpen: got %+v, want %s", found, loan.ID)
	}

	loan.Close(at.Add(time.Hour))
	if err := s.MarkReturned(ctx, loan); err != nil {
		t.Fatalf("MarkReturned: %v", err)
	}

	closed, err := s.FindByID(ctx, loan.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !closed.Returned || closed.ReturnedAt == nil || !closed.ReturnedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("loan not closed: %+v", closed)
	}

	found, err = s.FindOpen(ctx, u.ID, b.ID)
	if err != nil {
		t.Fatalf("FindOpen after return: %v", err)
	}
	if found != nil {
		t.Error("expected no open loan after return")
	}
}

func TestLoanStoreSecondOpenLoanRejected(t *testing.T) {
	db := testDB(t)
	s := NewLoanStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 2)
	u := createTestUser(t, db)

	if _, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: testNow()}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: testNow().Add(time.Second)})
	if !errors.Is(err, models.ErrDuplicateOpenLoan) {
		t.Errorf("expected ErrDuplicateOpenLoan, got %v", err)
	}
}

func TestLoanStoreRejectsReturnBeforeCheckout(t *testing.T) {
	db := testDB(t)
	s := NewLoanStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 1)
	u := createTestUser(t, db)
	at := testNow()

	loan, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: at})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	loan.Close(at.Add(-time.Minute))
	err = s.MarkReturned(ctx, loan)
	if !errors.Is(err, models.ErrInvalidReturnDate) {
		t.Errorf("expected ErrInvalidReturnDate, got %v", err)
	}
}

func TestLoanStoreMarkReturnedMissing(t *testing.T) {
	db := testDB(t)
	l := &models.Loan{ID: uuid.New()}
	l.Close(testNow())

	err := NewLoanStore(db).MarkReturned(context.Background(), l)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoanStoreListFilters(t *testing.T) {
	db := testDB(t)
	s := NewLoanStore(db)
	ctx := context.Background()

	b := createTestBook(t, db, 3)
	u := createTestUser(t, db)
	at := testNow()

	first, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: at})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	first.Close(at.Add(time.Minute))
	if err := s.MarkReturned(ctx, first); err != nil {
		t.Fatalf("MarkReturned: %v", err)
	}
	second, err := s.Create(ctx, &models.Loan{ID: uuid.New(), PatronID: u.ID, BookID: b.ID, CheckedOutAt: at.Add(2 * time.Minute)})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	tests := []struct {
		status models.LoanStatus
		want   []uuid.UUID
	}{
		{models.LoanStatusAll, []uuid.UUID{second.ID, first.ID}},
		{models.LoanStatusOpen, []uuid.UUID{second.ID}},
		{models.LoanStatusClosed, []uuid.UUID{first.ID}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			items, err := s.List(ctx, LoanFilter{Status: tt.status, PatronID: &u.ID})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("List: got %d loans, want %d", len(items), len(tt.want))
			}
			for i, id := range tt.want {
				if items[i].ID != id {
					t.Errorf("item %d: got %s, want %s", i, items[i].ID, id)
				}
				if items[i].BookTitle != b.Title || items[i].PatronUsername != u.Username {
					t.Errorf("item %d: joined fields not populated: %+v", i, items[i])
				}
			}
		})
	}

	other := createTestBook(t, db, 1)
	items, err := s.List(ctx, LoanFilter{BookID: &other.ID})
	if err != nil {
		t.Fatalf("List by book: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no loans for untouched book, got %d", len(items))
	}
}
