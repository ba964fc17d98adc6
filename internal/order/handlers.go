package order

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/events"
)

// Handler exposes the customer-facing order endpoints.
type Handler struct {
	Store  *Store
	Events *events.Bus
	Log    zerolog.Logger
}

// callerID resolves the requesting user. There is no session layer; the
// storefront passes its user id via context middleware or query parameter.
func callerID(r *http.Request) string {
	if id, ok := common.UserID(r.Context()); ok && id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}

// List returns the caller's orders, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID := callerID(r)
	if userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user identification required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	offset := int32((page - 1) * perPage)
	orders, total, err := h.Store.ListByUser(r.Context(), userID, int32(perPage), offset)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": orders,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

// Get returns one of the caller's orders with its items.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID := callerID(r)
	if userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user identification required", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.Store.GetForUser(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// Cancel flips a pending order to cancelled and restores its stock.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID := callerID(r)
	if userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user identification required", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.Store.CancelPending(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		case errors.Is(err, ErrNotCancellable):
			common.JSONError(w, http.StatusBadRequest, "INVALID_STATE", "only pending orders can be cancelled", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to cancel order", nil)
		}
		return
	}
	if h.Events != nil {
		payload := map[string]any{
			"orderId":     o.ID.String(),
			"orderNumber": o.OrderNumber,
			"email":       o.Email,
			"status":      string(StatusCancelled),
		}
		if _, err := h.Events.Emit(r.Context(), events.TopicOrderCancelled, o.ID, payload); err != nil {
			h.Log.Warn().Err(err).Str("order", o.OrderNumber).Msg("order cancelled event emit failed")
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}
