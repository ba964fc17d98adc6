package coupon

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/pricing"
)

// Handler exposes the public coupon preview endpoint.
type Handler struct {
	Svc *Service
}

type previewRequest struct {
	Code     string        `json:"code"`
	Subtotal pricing.Money `json:"subtotal"`
}

// Preview evaluates a code against a subtotal without redeeming it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if req.Subtotal < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "subtotal must not be negative", nil)
		return
	}
	result := h.Svc.Preview(r.Context(), req.Code, req.Subtotal)
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// AdminHandler exposes coupon management endpoints.
type AdminHandler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createRequest struct {
	Code               string `json:"code" validate:"required,min=2,max=32"`
	DiscountPercentage int32  `json:"discountPercentage" validate:"required,gte=1,lte=100"`
	IsActive           bool   `json:"isActive"`
}

// Create registers a new coupon code.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid coupon", err.Error())
			return
		}
	}
	c, err := h.Svc.Create(r.Context(), req.Code, req.DiscountPercentage, req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateCode):
			common.JSONError(w, http.StatusConflict, "CONFLICT", "coupon code already exists", nil)
		case errors.Is(err, ErrInvalidPercent):
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create coupon", nil)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// List returns every coupon for the admin dashboard.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	coupons, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to list coupons", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": coupons})
}

type setActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// SetActive toggles a coupon on or off.
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid coupon id", nil)
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// Delete removes a coupon.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid coupon id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to delete coupon", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
