package lease

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
)

type Handler struct {
	svc *lease.Service
}

func NewHandler(svc *lease.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/availability", h.availability)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/terminate", h.terminate)
	r.Post("/{id}/schedule", h.schedule)
}

type leaseRequest struct {
	TenantID  uuid.UUID   `json:"tenant_id"`
	RoomID    uuid.UUID   `json:"room_id"`
	StartDate httpx.Date  `json:"start_date"`
	EndDate   *httpx.Date `json:"end_date"`
	RentValue money.Cents `json:"rent_value"`
	Charges   money.Cents `json:"charges"`
}

func (req leaseRequest) params() lease.Params {
	return lease.Params{
		TenantID:  req.TenantID,
		RoomID:    req.RoomID,
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.TimePtr(),
		RentValue: req.RentValue,
		Charges:   req.Charges,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req leaseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	l, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter lease.ListFilter
		err    error
	)

	if filter.RoomID, err = httpx.QueryID(r, "room_id"); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if filter.TenantID, err = httpx.QueryID(r, "tenant_id"); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if s := r.URL.Query().Get("active_on"); s != "" {
		t, err := httpx.ParseDate(s)
		if err != nil {
			httpx.Error(w, r, apperr.Invalid("active_on", err.Error()))
			return
		}

		filter.ActiveOn = new(lease.Day(t))
	}

	leases, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(leases))
}

type availabilityResponse struct {
	RoomID    uuid.UUID   `json:"room_id"`
	StartDate httpx.Date  `json:"start_date"`
	EndDate   *httpx.Date `json:"end_date"`
	Available bool        `json:"available"`
}

// availability tells whether a room is free over [start_date, end_date). An
// optional exclude_lease_id leaves a lease being edited out of the check.
func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := &apperr.ValidationError{}

	roomID, err := uuid.Parse(q.Get("room_id"))
	if err != nil {
		errs.Add("room_id", "must be a valid UUID")
	}

	start, err := httpx.ParseDate(q.Get("start_date"))
	if err != nil {
		errs.Add("start_date", err.Error())
	}

	var end *httpx.Date
	if s := q.Get("end_date"); s != "" {
		t, err := httpx.ParseDate(s)
		if err != nil {
			errs.Add("end_date", err.Error())
		}

		end = &httpx.Date{Time: lease.Day(t)}
	}

	exclude, err := httpx.QueryID(r, "exclude_lease_id")
	if err != nil {
		errs.Add("exclude_lease_id", "must be a valid UUID")
	}

	if err := errs.OrNil(); err != nil {
		httpx.Error(w, r, err)
		return
	}

	excludeID := uuid.Nil
	if exclude != nil {
		excludeID = *exclude
	}

	start = lease.Day(start)

	overlap, err := h.svc.HasOverlap(r.Context(), roomID, start, end.TimePtr(), excludeID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, availabilityResponse{
		RoomID:    roomID,
		StartDate: httpx.Date{Time: start},
		EndDate:   end,
		Available: !overlap,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(l))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req leaseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	l, err := h.svc.Update(r.Context(), id, req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(l))
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

type terminateRequest struct {
	EndDate *httpx.Date `json:"end_date"`
}

func (h *Handler) terminate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req terminateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	if req.EndDate == nil {
		httpx.Error(w, r, apperr.Invalid("end_date", "is required"))
		return
	}

	l, err := h.svc.Terminate(r.Context(), id, req.EndDate.Time)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(l))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	added, err := h.svc.Schedule(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toStubResponseList(added))
}
