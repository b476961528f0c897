package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookstore-management/bookstore"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v as the response body. API responses reflect mutable
// files on disk, so caching is disabled.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto an HTTP status:
// validation 400, not found 404, insufficient stock 409, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bookstore.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, bookstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, bookstore.ErrInsufficientStock):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeBody unmarshals a JSON request body into dst, rejecting unknown
// syntax with a validation error.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return bookstore.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, bookstore.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
