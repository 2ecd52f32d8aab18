package receipt

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/receipt"
)

type Handler struct {
	engine *receipt.Engine
}

func NewHandler(engine *receipt.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{paymentID}/download", h.download)
}

// download streams the receipt PDF, or redirects to a signed URL when ?redirect=true.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	paymentID, err := httpx.ID(r, "paymentID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if redirect, _ := strconv.ParseBool(r.URL.Query().Get("redirect")); redirect {
		url, err := h.engine.Link(r.Context(), paymentID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		http.Redirect(w, r, url, http.StatusFound)

		return
	}

	a, err := h.engine.Download(r.Context(), paymentID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(a.Data); err != nil {
		slog.Error("failed to write receipt", "payment_id", paymentID, "error", err)
	}
}
