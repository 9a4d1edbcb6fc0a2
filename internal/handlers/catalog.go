// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"biblioteca/internal/cache"
	"biblioteca/internal/library"
	"biblioteca/internal/middleware"
	"biblioteca/internal/models"
)

// dateLayout is the wire format of published_on.
const dateLayout = "2006-01-02"

// Catalog groups category and book handlers. List responses are served
// from the list cache and every write invalidates it.
type Catalog struct {
	lib   Library
	lists ListCache
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(lib Library, lists ListCache) *Catalog {
	return &Catalog{lib: lib, lists: lists}
}

type categoryRequest struct {
	Name        string  `json:"name" validate:"max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type createBookRequest struct {
	Title           string   `json:"title" validate:"max=255"`
	Author          string   `json:"author" validate:"max=255"`
	PublishedOn     string   `json:"published_on" validate:"required,datetime=2006-01-02"`
	Identifier      string   `json:"identifier" validate:"max=32"`
	CategoryIDs     []string `json:"category_ids"`
	AvailableCopies *int     `json:"available_copies"`
}

type updateBookRequest struct {
	Title           *string   `json:"title" validate:"omitempty,max=255"`
	Author          *string   `json:"author" validate:"omitempty,max=255"`
	PublishedOn     *string   `json:"published_on" validate:"omitempty,datetime=2006-01-02"`
	Identifier      *string   `json:"identifier" validate:"omitempty,max=32"`
	CategoryIDs     *[]string `json:"category_ids"`
	AvailableCopies *int      `json:"available_copies"`
}

// --- Categories ---

// ListCategories returns every category with its book count.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	var cats []models.Category
	if c.lists.Get(r.Context(), cache.KeyCategories, &cats) {
		writeJSON(w, http.StatusOK, cats)
		return
	}

	cats, err := c.lib.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}

	c.lists.Set(r.Context(), cache.KeyCategories, cats)
	writeJSON(w, http.StatusOK, cats)
}

// GetCategory returns one category.
func (c *Catalog) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cat, err := c.lib.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CreateCategory adds a category. Admin only.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	cat, err := c.lib.CreateCategory(r.Context(), library.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c.lists.Invalidate(r.Context(), cache.KeyCategories)
	slog.Info("category created", "category_id", cat.ID, "name", cat.Name)
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory edits a category. Patrons may only rename; the
// description is ignored for them.
func (c *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	in := library.CategoryInput{Name: req.Name}
	if middleware.SessionFromCtx(r.Context()).IsAdmin() {
		in.Description = req.Description
	}

	cat, err := c.lib.UpdateCategory(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Books embed their categories, so both lists go stale.
	c.lists.Invalidate(r.Context(), cache.KeyCategories, cache.KeyBooks)
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory removes a category. Admin only.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := c.lib.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	c.lists.Invalidate(r.Context(), cache.KeyCategories, cache.KeyBooks)
	slog.Info("category deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Books ---

// ListBooks returns every book with its categories.
func (c *Catalog) ListBooks(w http.ResponseWriter, r *http.Request) {
	var books []models.Book
	if c.lists.Get(r.Context(), cache.KeyBooks, &books) {
		writeJSON(w, http.StatusOK, books)
		return
	}

	books, err := c.lib.ListBooks(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	c.lists.Set(r.Context(), cache.KeyBooks, books)
	writeJSON(w, http.StatusOK, books)
}

// GetBook returns one book.
func (c *Catalog) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	book, err := c.lib.GetBook(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// CreateBook adds a book to the catalog. Admin only.
func (c *Catalog) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	published, err := time.Parse(dateLayout, req.PublishedOn)
	if err != nil {
		writeServiceError(w, r, invalidRequest("published_on"))
		return
	}
	categoryIDs, err := parseIDs("category_ids", req.CategoryIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	book, err := c.lib.CreateBook(r.Context(), library.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		PublishedOn: published,
		Identifier:  req.Identifier,
		CategoryIDs: categoryIDs,
		Copies:      req.AvailableCopies,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c.lists.Invalidate(r.Context(), cache.KeyBooks, cache.KeyCategories)
	slog.Info("book created", "book_id", book.ID, "identifier", book.Identifier)
	writeJSON(w, http.StatusCreated, book)
}

// UpdateBook edits a book. Admins may change any field; patrons may only
// correct available_copies and their other fields are ignored.
func (c *Catalog) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req updateBookRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	in := library.BookUpdate{AvailableCopies: req.AvailableCopies}
	if middleware.SessionFromCtx(r.Context()).IsAdmin() {
		if in, err = adminBookUpdate(req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	book, err := c.lib.UpdateBook(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c.lists.Invalidate(r.Context(), cache.KeyBooks, cache.KeyCategories)
	writeJSON(w, http.StatusOK, book)
}

// DeleteBook removes a book and its loan history. Admin only.
func (c *Catalog) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := c.lib.DeleteBook(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	c.lists.Invalidate(r.Context(), cache.KeyBooks, cache.KeyCategories)
	slog.Info("book deleted", "book_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func adminBookUpdate(req updateBookRequest) (library.BookUpdate, error) {
	in := library.BookUpdate{
		Title:           req.Title,
		Author:          req.Author,
		Identifier:      req.Identifier,
		AvailableCopies: req.AvailableCopies,
	}

	if req.PublishedOn != nil {
		published, err := time.Parse(dateLayout, *req.PublishedOn)
		if err != nil {
			return in, invalidRequest("published_on")
		}
		in.PublishedOn = &published
	}

	if req.CategoryIDs != nil {
		ids, err := parseIDs("category_ids", *req.CategoryIDs)
		if err != nil {
			return in, err
		}
		in.CategoryIDs = &ids
	}
	return in, nil
}
