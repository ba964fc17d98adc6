package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/events"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Store  *Store
	Events *events.Bus
	Log    zerolog.Logger
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// PatchStatus advances an order through the fulfilment state machine.
// Cancellation goes through the customer cancel endpoint so stock is
// restored; this endpoint only moves fulfilment forward.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	target := Status(req.Status)
	if !target.Valid() || target == StatusPending || target == StatusCancelled {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unsupported status", nil)
		return
	}
	current, err := h.Store.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if !CanTransition(current, target) {
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", "cannot transition to equal or previous state", nil)
		return
	}
	if err := h.Store.SetStatusFrom(r.Context(), id, current, target); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			common.JSONError(w, http.StatusConflict, "INVALID_STATE", "state transition not allowed", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order status", nil)
		return
	}
	if h.Events != nil {
		payload := map[string]any{
			"orderId": id.String(),
			"from":    string(current),
			"status":  string(target),
		}
		if _, err := h.Events.Emit(r.Context(), events.TopicOrderStatusChanged, id, payload); err != nil {
			h.Log.Warn().Err(err).Str("order", id.String()).Msg("status changed event emit failed")
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": string(target)}})
}
