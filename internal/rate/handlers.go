package rate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
)

// Handler exposes the silver rate endpoints.
type Handler struct {
	Svc *Service
}

// Get serves the live rate to storefront clients.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rate service not configured", nil)
		return
	}
	snap, err := h.Svc.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotSet) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "silver rate not set", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load silver rate", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

type updateRequest struct {
	Rate float64 `json:"rate"`
}

// Update applies an admin rate change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rate service not configured", nil)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	snap, err := h.Svc.Update(r.Context(), req.Rate)
	if err != nil {
		if errors.Is(err, ErrInvalidRate) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "rate must be positive", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update silver rate", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}
