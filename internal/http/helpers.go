package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pocketpal/internal/core"
	"pocketpal/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"status", status,
			"message", message,
			"path", r.URL.Path)
	}
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps domain and storage errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrDuplicateName):
		respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrInUse):
		respondError(w, r, http.StatusConflict, err.Error())
	case isValidationError(err):
		respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrNegativeAmount,
		core.ErrInvalidAmount,
		core.ErrNoAmount,
		core.ErrBothAmounts,
		core.ErrEmptyName,
		core.ErrNameTooLong,
		core.ErrMissingCategory,
		core.ErrMissingSubject,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// pathID extracts the numeric {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
