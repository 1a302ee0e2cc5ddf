package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// CouponHandler handles coupon validation, redemption and admin issuance.
type CouponHandler struct {
	couponService *service.CouponService
	log           *logger.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *service.CouponService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		log:           log,
	}
}

type couponResponse struct {
	Message string         `json:"message"`
	Coupon  *models.Coupon `json:"coupon"`
}

type validateResponse struct {
	Valid  bool                `json:"valid"`
	Coupon *models.CouponQuote `json:"coupon"`
}

type appliedCoupon struct {
	Code         string  `json:"code"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discountType"`
}

type applyResponse struct {
	Message string        `json:"message"`
	Coupon  appliedCoupon `json:"coupon"`
}

type couponDetails struct {
	Code            string    `json:"code"`
	Discount        float64   `json:"discount"`
	DiscountType    string    `json:"discountType"`
	MinimumPurchase float64   `json:"minimumPurchase"`
	ExpirationDate  time.Time `json:"expirationDate"`
	IsActive        bool      `json:"isActive"`
	Description     string    `json:"description"`
}

// CreateTest handles POST /api/coupons/create-test
func (h *CouponHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	c, created, err := h.couponService.CreateTest(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if !created {
		WriteJSON(w, http.StatusOK, couponResponse{Message: "Test coupon already exists", Coupon: c}, h.log)
		return
	}
	WriteJSON(w, http.StatusCreated, couponResponse{Message: "Test coupon created successfully", Coupon: c}, h.log)
}

// Validate handles POST /api/coupons/validate
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.CouponValidateRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}

	quote, err := h.couponService.Validate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, validateResponse{Valid: true, Coupon: quote}, h.log)
}

// Apply handles POST /api/coupons/apply
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.CouponApplyRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}

	quote, err := h.couponService.Apply(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, applyResponse{
		Message: "Coupon applied successfully",
		Coupon:  appliedCoupon{Code: quote.Code, Discount: quote.Discount, DiscountType: quote.DiscountType},
	}, h.log)
}

// GetCoupon handles GET /api/coupons/{code}
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.couponService.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, couponDetails{
		Code:            c.Code,
		Discount:        c.Discount,
		DiscountType:    c.DiscountType,
		MinimumPurchase: c.MinimumPurchase,
		ExpirationDate:  c.ExpirationDate,
		IsActive:        c.IsActive,
		Description:     c.Description,
	}, h.log)
}

// AdminList handles GET /api/admin/coupons
func (h *CouponHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	WriteJSON(w, http.StatusOK, coupons, h.log)
}

// AdminCreate handles POST /api/admin/coupons
func (h *CouponHandler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CouponRequest
	if !decodeValid(w, r, &req, h.log) {
		return
	}

	c, err := h.couponService.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusCreated, couponResponse{Message: "Coupon created successfully", Coupon: c}, h.log)
}
