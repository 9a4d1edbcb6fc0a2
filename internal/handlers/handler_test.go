// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// in-memory fakes for the service, cache, users and sessions, and a helper
// that serves one route through chi with an optional session.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"biblioteca/internal/library"
	"biblioteca/internal/middleware"
	"biblioteca/internal/models"
	"biblioteca/internal/session"
)

// fakeLibrary implements Library with per-test function fields. Calling a
// method whose field is nil panics through the embedded nil interface.
type fakeLibrary struct {
	Library

	listCategories func() ([]models.Category, error)
	createCategory func(library.CategoryInput) (*models.Category, error)
	updateCategory func(uuid.UUID, library.CategoryInput) (*models.Category, error)
	deleteCategory func(uuid.UUID) error
	getCategory    func(uuid.UUID) (*models.Category, error)
	listBooks      func() ([]models.Book, error)
	createBook     func(library.BookInput) (*models.Book, error)
	updateBook     func(uuid.UUID, library.BookUpdate) (*models.Book, error)
	deleteBook     func(uuid.UUID) error
	checkout       func(bookID, patronID uuid.UUID) (*models.Loan, error)
	registerReturn func(uuid.UUID) (*models.Loan, error)
	returnBook     func(bookID, patronID uuid.UUID) (*models.Loan, error)
	getLoan        func(uuid.UUID) (*models.Loan, error)
	listLoans      func(library.LoanQuery) ([]models.Loan, error)
}

func (f *fakeLibrary) ListCategories(context.Context) ([]models.Category, error) {
	return f.listCategories()
}

func (f *fakeLibrary) CreateCategory(_ context.Context, in library.CategoryInput) (*models.Category, error) {
	return f.createCategory(in)
}

func (f *fakeLibrary) UpdateCategory(_ context.Context, id uuid.UUID, in library.CategoryInput) (*models.Category, error) {
	return f.updateCategory(id, in)
}

func (f *fakeLibrary) DeleteCategory(_ context.Context, id uuid.UUID) error {
	return f.deleteCategory(id)
}

func (f *fakeLibrary) GetCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return f.getCategory(id)
}

func (f *fakeLibrary) ListBooks(context.Context) ([]models.Book, error) {
	return f.listBooks()
}

func (f *fakeLibrary) CreateBook(_ context.Context, in library.BookInput) (*models.Book, error) {
	return f.createBook(in)
}

func (f *fakeLibrary) UpdateBook(_ context.Context, id uuid.UUID, in library.BookUpdate) (*models.Book, error) {
	return f.updateBook(id, in)
}

func (f *fakeLibrary) DeleteBook(_ context.Context, id uuid.UUID) error {
	return f.deleteBook(id)
}

func (f *fakeLibrary) Checkout(_ context.Context, bookID, patronID uuid.UUID) (*models.Loan, error) {
	return f.checkout(bookID, patronID)
}

func (f *fakeLibrary) RegisterReturn(_ context.Context, id uuid.UUID) (*models.Loan, error) {
	return f.registerReturn(id)
}

func (f *fakeLibrary) ReturnBook(_ context.Context, bookID, patronID uuid.UUID) (*models.Loan, error) {
	return f.returnBook(bookID, patronID)
}

func (f *fakeLibrary) GetLoan(_ context.Context, id uuid.UUID) (*models.Loan, error) {
	return f.getLoan(id)
}

func (f *fakeLibrary) ListLoans(_ context.Context, q library.LoanQuery) ([]models.Loan, error) {
	return f.listLoans(q)
}

// fakeCache is an in-memory ListCache that records invalidated keys.
type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) bool {
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.entries[key] = data
}

func (c *fakeCache) Invalidate(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
}

func (c *fakeCache) wasInvalidated(key string) bool {
	for _, k := range c.invalidated {
		if k == key {
			return true
		}
	}
	return false
}

// fakeUsers keeps users in memory. Passwords are stored in clear in
// PasswordHash.
type fakeUsers struct {
	byName map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byName: make(map[string]*models.User)}
	for _, u := range users {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return f.byName[username], nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, username, email, password string, role models.Role) (*models.User, error) {
	if _, ok := f.byName[username]; ok {
		return nil, models.ErrDuplicateUsername
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: password,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byName[username] = u
	return u, nil
}

func (f *fakeUsers) CheckPassword(user *models.User, password string) bool {
	return user.PasswordHash == password
}

// fakeSessions records created sessions and sets a cookie like the real
// store does.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session", Path: "/"})
	return "test-session", nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	return nil
}

func patronSession() *session.Data {
	return &session.Data{UserID: uuid.New(), Username: "reader", Role: models.RolePatron}
}

func adminSession() *session.Data {
	return &session.Data{UserID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
}

// serve routes a single request to h mounted at pattern, with sess in the
// request context when non-nil.
func serve(t *testing.T, h http.HandlerFunc, method, pattern, target, body string, sess *session.Data) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if sess != nil {
				req = req.WithContext(middleware.WithSession(req.Context(), sess))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
