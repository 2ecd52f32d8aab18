// Package verify serves the public receipt verification endpoint.
package verify

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/verification"
)

type Handler struct {
	svc *verification.Service
}

func NewHandler(svc *verification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{hash}", h.verify)
}

type documentInfo struct {
	Type     string      `json:"type"`
	Date     httpx.Date  `json:"date"`
	Tenant   string      `json:"tenant"`
	Property string      `json:"property"`
	Amount   money.Cents `json:"amount"`
}

type verifyData struct {
	IsValid      bool         `json:"isValid"`
	DocumentInfo documentInfo `json:"documentInfo"`
}

type verifyResponse struct {
	Status string     `json:"status"`
	Data   verifyData `json:"data"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Verify(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, verifyResponse{
		Status: "success",
		Data: verifyData{
			IsValid: res.IsValid,
			DocumentInfo: documentInfo{
				Type:     res.Type,
				Date:     httpx.Date{Time: res.Date},
				Tenant:   res.Tenant,
				Property: res.Property,
				Amount:   res.Amount,
			},
		},
	})
}
