package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
)

// AdminHandler exposes the product maintenance endpoint for the dashboard.
type AdminHandler struct {
	Svc      *Service
	Validate *validator.Validate
}

type adminPatchRequest struct {
	StockQuantity *int32   `json:"stock" validate:"omitempty,gte=0"`
	WeightGrams   *float64 `json:"weight" validate:"omitempty,gte=0"`
	MakingCharges *float64 `json:"makingCharges" validate:"omitempty,gte=0"`
	HotDeal       *bool    `json:"hotDeal"`
}

// Patch updates stock, weight, making charges or the hot-deal flag. The
// price column is never written: it is derived from weight and the live rate.
func (h *AdminHandler) Patch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var req adminPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product patch", err.Error())
			return
		}
	}
	patch := AdminPatch{
		StockQuantity: req.StockQuantity,
		WeightGrams:   req.WeightGrams,
		MakingCharges: req.MakingCharges,
		HotDeal:       req.HotDeal,
	}
	if patch.Empty() {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "no fields to update", nil)
		return
	}
	product, err := h.Svc.ApplyAdminPatch(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
