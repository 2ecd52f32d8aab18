package property

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/property"
)

type roomRequest struct {
	PropertyID uuid.UUID `json:"property_id"`
	Number     string    `json:"room_number"`
	Surface    float64   `json:"surface"`
	HasTV      bool      `json:"has_tv"`
	HasShower  bool      `json:"has_shower"`
}

func (req roomRequest) params() property.RoomParams {
	return property.RoomParams{
		PropertyID: req.PropertyID,
		Number:     req.Number,
		Surface:    req.Surface,
		HasTV:      req.HasTV,
		HasShower:  req.HasShower,
	}
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	room, err := h.svc.CreateRoom(r.Context(), req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	propertyID, err := httpx.QueryID(r, "property_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	rooms, err := h.svc.ListRooms(r.Context(), property.RoomFilter{PropertyID: propertyID})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toRoomResponseList(rooms))
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	room, err := h.svc.GetRoom(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req roomRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	room, err := h.svc.UpdateRoom(r.Context(), id, req.params())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteRoom(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
