package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

func cartRouter(e *testEnv, u *models.User) http.Handler {
	return newRouter(u, func(r chi.Router) {
		r.Get("/api/cart", e.Cart.GetCart)
		r.Post("/api/cart/add", e.Cart.AddItem)
		r.Put("/api/cart/update", e.Cart.UpdateItem)
		r.Delete("/api/cart/remove/{productId}", e.Cart.RemoveItem)
		r.Delete("/api/cart/clear", e.Cart.ClearCart)
	})
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	e := newTestEnv(t)
	w := do(t, cartRouter(e, nil), http.MethodGet, "/api/cart", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestCartHandler(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "lifter", false)
	p := e.product(t, "Kettlebell", 20, 5)
	h := cartRouter(e, u)

	w := do(t, h, http.MethodGet, "/api/cart", nil)
	var cart models.Cart
	decode(t, w, &cart)
	if w.Code != http.StatusOK || cart.UserID != u.ID || len(cart.Items) != 0 {
		t.Fatalf("get cart: status %d, cart %+v", w.Code, cart)
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedTotal  float64
		expectedError  string
	}{
		{
			name:   "add defaults to one unit",
			method: http.MethodPost, path: "/api/cart/add",
			body:           map[string]interface{}{"productId": p.ID},
			expectedStatus: http.StatusOK, expectedTotal: 20,
		},
		{
			name:   "add merges lines",
			method: http.MethodPost, path: "/api/cart/add",
			body:           map[string]interface{}{"productId": p.ID, "quantity": 2},
			expectedStatus: http.StatusOK, expectedTotal: 60,
		},
		{
			name:   "add beyond stock",
			method: http.MethodPost, path: "/api/cart/add",
			body:           map[string]interface{}{"productId": p.ID, "quantity": 3},
			expectedStatus: http.StatusBadRequest, expectedError: "Not enough stock available",
		},
		{
			name:   "add zero quantity",
			method: http.MethodPost, path: "/api/cart/add",
			body:           map[string]interface{}{"productId": p.ID, "quantity": 0},
			expectedStatus: http.StatusBadRequest, expectedError: "Quantity must be greater than 0",
		},
		{
			name:   "add unknown product",
			method: http.MethodPost, path: "/api/cart/add",
			body:           map[string]interface{}{"productId": "nope"},
			expectedStatus: http.StatusNotFound, expectedError: "Product not found or inactive",
		},
		{
			name:   "update quantity",
			method: http.MethodPut, path: "/api/cart/update",
			body:           map[string]interface{}{"productId": p.ID, "quantity": 5},
			expectedStatus: http.StatusOK, expectedTotal: 100,
		},
		{
			name:   "update missing line",
			method: http.MethodPut, path: "/api/cart/update",
			body:           map[string]interface{}{"productId": "other", "quantity": 1},
			expectedStatus: http.StatusNotFound, expectedError: "Item not found in cart",
		},
		{
			name:   "remove missing line",
			method: http.MethodDelete, path: "/api/cart/remove/other",
			expectedStatus: http.StatusNotFound, expectedError: "Item not found in cart",
		},
		{
			name:   "remove line",
			method: http.MethodDelete, path: "/api/cart/remove/" + p.ID,
			expectedStatus: http.StatusOK, expectedTotal: 0,
		},
		{
			name:   "clear",
			method: http.MethodDelete, path: "/api/cart/clear",
			expectedStatus: http.StatusOK, expectedTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedError != "" {
				if body := errorBody(t, w); body["error"] != tt.expectedError {
					t.Errorf("expected error %q, got %v", tt.expectedError, body["error"])
				}
				return
			}
			var cart models.Cart
			decode(t, w, &cart)
			if cart.Total != tt.expectedTotal {
				t.Errorf("expected total %v, got %v", tt.expectedTotal, cart.Total)
			}
			if cart.Items == nil {
				t.Error("items should encode as an empty list, not null")
			}
		})
	}
}

func TestCartHandler_ClearWithoutCart(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "newbie", false)
	w := do(t, cartRouter(e, u), http.MethodDelete, "/api/cart/clear", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
