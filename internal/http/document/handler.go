package document

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/document"
	"github.com/Madofly35/GestLoc/internal/http/httpx"
)

// multipartOverhead leaves room for the form boundaries around a file of document.MaxSize.
const multipartOverhead = 1 << 20

type Handler struct {
	svc *document.Service
}

func NewHandler(svc *document.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

// TenantRoutes is mounted below /tenants/{id}/documents.
func (h *Handler) TenantRoutes(r chi.Router) {
	r.Get("/", h.listForTenant)
	r.Post("/{type}", h.upload)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listForTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	docs, err := h.svc.ListForTenant(r.Context(), tenantID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(docs))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, document.MaxSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, r, apperr.Invalid("file", "a multipart file of at most 50MB is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, document.MaxSize+1))
	if err != nil {
		httpx.Error(w, r, apperr.Invalid("file", err.Error()))
		return
	}

	d, err := h.svc.Upload(r.Context(), document.Upload{
		TenantID: tenantID,
		Type:     document.Type(chi.URLParam(r, "type")),
		Name:     header.Filename,
		Data:     data,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(d))
}
