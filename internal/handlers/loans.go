// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"biblioteca/internal/cache"
	"biblioteca/internal/library"
	"biblioteca/internal/middleware"
	"biblioteca/internal/models"
	"biblioteca/internal/session"
)

// Loans groups checkout, return and loan listing handlers. Lending calls
// that time out waiting for a row lock are retried with backoff.
type Loans struct {
	lib     Library
	lists   ListCache
	retries int
}

// NewLoans creates a new Loans handler group. retries is the total number
// of attempts for a lending call that reports models.ErrBusy.
func NewLoans(lib Library, lists ListCache, retries int) *Loans {
	return &Loans{lib: lib, lists: lists, retries: retries}
}

type lendRequest struct {
	BookID   string `json:"book_id" validate:"required,uuid"`
	PatronID string `json:"patron_id" validate:"omitempty,uuid"`
}

var errForbidden = &requestError{status: http.StatusForbidden, code: "forbidden"}

// patronFor resolves whose loan a request acts on. Patrons act only for
// themselves; admins may name any patron.
func patronFor(sess *session.Data, raw string) (uuid.UUID, error) {
	id, err := optionalID("patron_id", raw)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return sess.UserID, nil
	}
	if *id != sess.UserID && !sess.IsAdmin() {
		return uuid.Nil, errForbidden
	}
	return *id, nil
}

// Checkout lends a copy of a book.
func (l *Loans) Checkout(w http.ResponseWriter, r *http.Request) {
	var req lendRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		writeServiceError(w, r, invalidRequest("book_id"))
		return
	}
	patronID, err := patronFor(middleware.SessionFromCtx(r.Context()), req.PatronID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var loan *models.Loan
	err = library.RetryBusy(r.Context(), l.retries, func(ctx context.Context) error {
		var err error
		loan, err = l.lib.Checkout(ctx, bookID, patronID)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	l.lists.Invalidate(r.Context(), cache.KeyBooks)
	writeJSON(w, http.StatusCreated, loan)
}

// Return closes the loan named in the URL. A patron asking about another
// patron's loan gets not found.
func (l *Loans) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAdmin() {
		loan, err := l.lib.GetLoan(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if loan.PatronID != sess.UserID {
			writeError(w, http.StatusNotFound, models.Code(models.ErrNotFound))
			return
		}
	}

	var loan *models.Loan
	err = library.RetryBusy(r.Context(), l.retries, func(ctx context.Context) error {
		var err error
		loan, err = l.lib.RegisterReturn(ctx, id)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	l.lists.Invalidate(r.Context(), cache.KeyBooks)
	writeJSON(w, http.StatusOK, loan)
}

// ReturnByBook closes the open loan for a (book, patron) pair.
func (l *Loans) ReturnByBook(w http.ResponseWriter, r *http.Request) {
	var req lendRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		writeServiceError(w, r, invalidRequest("book_id"))
		return
	}
	patronID, err := patronFor(middleware.SessionFromCtx(r.Context()), req.PatronID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var loan *models.Loan
	err = library.RetryBusy(r.Context(), l.retries, func(ctx context.Context) error {
		var err error
		loan, err = l.lib.ReturnBook(ctx, bookID, patronID)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	l.lists.Invalidate(r.Context(), cache.KeyBooks)
	writeJSON(w, http.StatusOK, loan)
}

// List returns loans filtered by ?filter=all|open|closed. Admins see every
// loan and may narrow by ?patron_id; patrons see their own.
func (l *Loans) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := models.LoanStatus(q.Get("filter"))
	if status == "" {
		status = models.LoanStatusAll
	}
	if !status.Valid() {
		writeServiceError(w, r, invalidRequest("filter"))
		return
	}

	query := library.LoanQuery{Status: status}

	bookID, err := optionalID("book_id", q.Get("book_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	query.BookID = bookID

	sess := middleware.SessionFromCtx(r.Context())
	if sess.IsAdmin() {
		if query.PatronID, err = optionalID("patron_id", q.Get("patron_id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
	} else {
		own := sess.UserID
		query.PatronID = &own
	}

	loans, err := l.lib.ListLoans(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}

	slog.Debug("loans listed", "filter", status, "count", len(loans))
	writeJSON(w, http.StatusOK, loans)
}
