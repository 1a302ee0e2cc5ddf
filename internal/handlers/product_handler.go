package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// ProductHandler handles catalog requests, public and admin.
type ProductHandler struct {
	service *service.ProductService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(svc *service.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  log,
	}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// Featured handles GET /api/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// ByCategory handles GET /api/products/category/{category}
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// Search handles GET /api/products/search?query=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/products/{productId}
// - 400: malformed ID
// - 404: missing or inactive
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// AdminList handles GET /api/admin/products
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.AdminList(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// AdminGet handles GET /api/admin/products/{productId}
func (h *ProductHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.AdminGet(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// Create handles POST /api/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decodeValid(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// Update handles PUT /api/admin/products/{productId}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decodeValid(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "productId"), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// Delete handles DELETE /api/admin/products/{productId}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"}, h.logger)
}

func parseProductFilter(q url.Values) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Query:    strings.TrimSpace(q.Get("q")),
		Sort:     q.Get("sort"),
	}

	var err error
	if filter.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.InStock, err = parseFlag(q, "inStock"); err != nil {
		return filter, err
	}
	if filter.Featured, err = parseFlag(q, "featured"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, &queryError{key: key}
	}
	return &v, nil
}

func parseFlag(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &queryError{key: key}
	}
	return v, nil
}

type queryError struct{ key string }

func (e *queryError) Error() string { return "Invalid " + e.key + " parameter" }
