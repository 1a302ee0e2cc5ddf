package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	cartService *service.CartService
	log         *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService, log *logger.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(r.Context(), user.ID)
	h.respond(w, r, cart, err)
}

// AddItem handles POST /api/cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	var req models.CartItemRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	cart, err := h.cartService.Add(r.Context(), user.ID, req)
	h.respond(w, r, cart, err)
}

// UpdateItem handles PUT /api/cart/update
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	var req models.CartItemRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	cart, err := h.cartService.Update(r.Context(), user.ID, req)
	h.respond(w, r, cart, err)
}

// RemoveItem handles DELETE /api/cart/remove/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	cart, err := h.cartService.Remove(r.Context(), user.ID, chi.URLParam(r, "productId"))
	h.respond(w, r, cart, err)
}

// ClearCart handles DELETE /api/cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	cart, err := h.cartService.Clear(r.Context(), user.ID)
	h.respond(w, r, cart, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, cart *models.Cart, err error) {
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, cart, h.log)
}
