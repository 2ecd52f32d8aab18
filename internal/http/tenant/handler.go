package tenant

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/tenant"
)

type Handler struct {
	svc      *tenant.Service
	payments *payment.Service
}

func NewHandler(svc *tenant.Service, payments *payment.Service) *Handler {
	return &Handler{svc: svc, payments: payments}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/receipts", h.receipts)
}

type tenantRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth httpx.Date `json:"date_of_birth"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
}

func (req tenantRequest) params() tenant.Params {
	return tenant.Params{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth.Time,
		Email:       req.Email,
		Phone:       req.Phone,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	t, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		h.findByEmail(w, r, email)
		return
	}

	tenants, err := h.svc.List(r.Context(), tenant.ListFilter{Search: r.URL.Query().Get("search")})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(tenants))
}

func (h *Handler) findByEmail(w http.ResponseWriter, r *http.Request, email string) {
	t, err := h.svc.FindByEmail(r.Context(), email)
	if errors.Is(err, apperr.ErrNotFound) {
		httpx.JSON(w, http.StatusOK, []tenantResponse{})
		return
	}

	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, []tenantResponse{toResponse(t)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req tenantRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	t, err := h.svc.Update(r.Context(), id, req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(t))
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

// receipts lists the paid payments of a tenant along with the state of their receipts.
func (h *Handler) receipts(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	payments, err := h.payments.ListForTenant(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toReceiptResponseList(payments))
}
