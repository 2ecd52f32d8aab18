// Package storage serves blobs of the filesystem driver behind their signed-URL tokens.
package storage

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
	"github.com/Madofly35/GestLoc/internal/blob/fs"
	"github.com/Madofly35/GestLoc/internal/http/httpx"
)

type Handler struct {
	store *fs.Store
}

func NewHandler(store *fs.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{bucket}/*", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	bucket, p := chi.URLParam(r, "bucket"), chi.URLParam(r, "*")

	if err := h.store.Verify(bucket, p, r.URL.Query().Get("token")); err != nil {
		if errors.Is(err, fs.ErrInvalidToken) {
			httpx.JSON(w, http.StatusForbidden, httpx.ErrorResponse{Status: "error", Message: "invalid or expired token"})
			return
		}

		httpx.Error(w, r, err)

		return
	}

	data, err := h.store.Download(r.Context(), bucket, p)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			err = apperr.NotFound("object", bucket+"/"+p)
		}

		httpx.Error(w, r, err)

		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write blob", "bucket", bucket, "path", p, "error", err)
	}
}
