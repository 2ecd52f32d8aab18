// Package httpx holds the request decoding and response helpers shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/lease"
)

type ErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details any               `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type overlapDetails struct {
	LeaseID   uuid.UUID `json:"lease_id"`
	StartDate Date      `json:"start_date"`
	EndDate   *Date     `json:"end_date"`
}

// Status maps an error onto the HTTP status of its apperr kind.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrDataIncomplete):
		return http.StatusInternalServerError
	case errors.Is(err, apperr.ErrExternalStorage):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// Error writes err as a JSON error body. Server-side failures are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	resp := ErrorResponse{Status: "error", Message: err.Error()}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	var overlap *lease.OverlapError
	if errors.As(err, &overlap) {
		resp.Details = overlapDetails{
			LeaseID:   overlap.LeaseID,
			StartDate: Date{overlap.Existing.Start},
			EndDate:   DatePtr(overlap.Existing.End),
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	JSON(w, status, resp)
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalid("body", err.Error())
	}

	return nil
}

// ID parses the UUID path parameter name.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a valid UUID")
	}

	return id, nil
}

// QueryID parses an optional UUID query parameter.
func QueryID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Invalid(name, "must be a valid UUID")
	}

	return &id, nil
}
