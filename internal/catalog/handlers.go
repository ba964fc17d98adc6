package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
)

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc *Service
}

// Products serves the paginated public product listing.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, h.Svc.DefaultLimit)
	params := ListParams{Page: page, Limit: limit}
	if raw := r.URL.Query().Get("hotDeal"); raw != "" {
		hot := raw == "true" || raw == "1"
		params.HotDeal = &hot
	}
	items, total, err := h.Svc.List(r.Context(), params)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to list products", nil)
		return
	}
	if items == nil {
		items = []PricedProduct{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    params.Limit,
			TotalItems: int(total),
		},
	})
}

// ProductDetail serves a single product by slug.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
		return
	}
	product, err := h.Svc.Detail(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
