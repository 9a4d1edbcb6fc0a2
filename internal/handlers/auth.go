// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"biblioteca/internal/library"
	"biblioteca/internal/middleware"
	"biblioteca/internal/models"
	"biblioteca/internal/session"
)

// Auth groups registration, sign-in and profile handlers.
type Auth struct {
	users    UserStore
	sessions SessionStore
	lib      Library
}

// NewAuth creates a new Auth handler group.
func NewAuth(users UserStore, sessions SessionStore, lib Library) *Auth {
	return &Auth{users: users, sessions: sessions, lib: lib}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// profileResponse is the body of GET /api/me.
type profileResponse struct {
	User      *models.User  `json:"user"`
	Loans     []models.Loan `json:"loans"`
	CSRFToken string        `json:"csrf_token,omitempty"`
}

// Register creates a patron account. Admin accounts are never created
// through the API.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	user, err := a.users.Create(r.Context(), username, strings.TrimSpace(req.Email), req.Password, models.RolePatron)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("patron registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := a.users.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Warn("failed login attempt", "username", req.Username, "ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, user)
}

// Logout destroys the current session. It succeeds without a session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user with their loans and the CSRF token to
// echo on state-changing requests.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		// The account was removed while the session was alive.
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	patronID := user.ID
	loans, err := a.lib.ListLoans(r.Context(), library.LoanQuery{
		Status:   models.LoanStatusAll,
		PatronID: &patronID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:      user,
		Loans:     loans,
		CSRFToken: middleware.CSRFTokenFromCtx(r.Context()),
	})
}
