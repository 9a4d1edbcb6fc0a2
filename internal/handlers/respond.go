// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the biblioteca JSON API. Handlers decode and
// validate requests, apply the role rules for each route and delegate the
// work to the library service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"biblioteca/internal/models"
	"biblioteca/internal/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError sends an error envelope without field details.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

// statusFor maps an error family to its HTTP status.
func statusFor(f models.Family) int {
	switch f {
	case models.FamilyValidation:
		return http.StatusUnprocessableEntity
	case models.FamilyConflict:
		return http.StatusConflict
	case models.FamilyNotFound:
		return http.StatusNotFound
	case models.FamilyTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError translates an error from decoding or from the library
// service into a response. Internal errors are logged and never echoed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeJSON(w, reqErr.status, errorResponse{Error: reqErr.code, Fields: reqErr.fields})
		return
	}

	status := statusFor(models.FamilyOf(err))
	switch status {
	case http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
	}

	resp := errorResponse{Error: models.Code(err)}
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		resp.Fields = verrs.Fields()
	}
	writeJSON(w, status, resp)
}
