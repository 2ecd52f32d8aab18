package payment

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/payment"
)

type Handler struct {
	svc *payment.Service
}

func NewHandler(svc *payment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{month:[0-9]{1,2}}/{year:[0-9]{4}}", h.period)
	r.Get("/{id}", h.get)
	r.Put("/{id}/mark-paid", h.markPaid)
	r.Put("/{id}/mark-unpaid", h.markUnpaid)
}

// LeaseRoutes is mounted below /leases/{id}/payments.
func (h *Handler) LeaseRoutes(r chi.Router) {
	r.Get("/", h.listForLease)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	res, err := h.svc.MarkPaid(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toMarkPaidResponse(res))
}

func (h *Handler) markUnpaid(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	p, err := h.svc.MarkUnpaid(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) {
	// The route patterns guarantee both parameters are digits.
	month, _ := strconv.Atoi(chi.URLParam(r, "month"))
	year, _ := strconv.Atoi(chi.URLParam(r, "year"))

	p, err := h.svc.Period(r.Context(), month, year)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toPeriodResponse(p))
}

func (h *Handler) listForLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	payments, err := h.svc.ListForLease(r.Context(), leaseID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(payments))
}
