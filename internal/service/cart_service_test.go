package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

func TestCartService_Get(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "shopper", false)

	cart, err := e.Cart.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cart.ID == "" || cart.UserID != u.ID {
		t.Errorf("unexpected cart: %+v", cart)
	}
	if cart.Items == nil || len(cart.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", cart.Items)
	}

	again, err := e.Cart.Get(ctx, u.ID)
	if err != nil || again.ID != cart.ID {
		t.Errorf("second Get() = %v, %v; want same cart", again, err)
	}
}

func TestCartService_Add(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "shopper", false)
	shaker := e.product(t, "Shaker", 20, 5, func(p *models.Product) { p.Discount = 25 })
	hidden := e.product(t, "Hidden", 20, 5, func(p *models.Product) { p.Active = false })
	if err := e.products.Update(ctx, hidden); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	cart, err := e.Cart.Add(ctx, u.ID, models.CartItemRequest{ProductID: shaker.ID, Quantity: qty(2)})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Price != 15 || cart.Total != 30 {
		t.Fatalf("unexpected cart after add: %+v", cart)
	}
	if cart.Items[0].Product == nil || cart.Items[0].Product.Name != "Shaker" {
		t.Error("expected line to carry product details")
	}

	cart, err = e.Cart.Add(ctx, u.ID, models.CartItemRequest{ProductID: shaker.ID})
	if err != nil {
		t.Fatalf("merge Add() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 || cart.Total != 45 {
		t.Errorf("expected merged line of 3 totalling 45, got %+v", cart)
	}

	tests := []struct {
		name string
		req  models.CartItemRequest
		want error
	}{
		{"unknown product", models.CartItemRequest{ProductID: uuid.NewString()}, ErrProductUnavailable},
		{"inactive product", models.CartItemRequest{ProductID: hidden.ID}, ErrProductUnavailable},
		{"zero quantity", models.CartItemRequest{ProductID: shaker.ID, Quantity: qty(0)}, ErrInvalidQuantity},
		{"merged quantity exceeds stock", models.CartItemRequest{ProductID: shaker.ID, Quantity: qty(3)}, ErrNotEnoughStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Cart.Add(ctx, u.ID, tt.req); err != tt.want {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "shopper", false)
	a := e.product(t, "Chalk", 5, 10)
	b := e.product(t, "Tape", 3, 10)

	if _, err := e.Cart.Update(ctx, u.ID, models.CartItemRequest{ProductID: a.ID, Quantity: qty(1)}); err != ErrCartNotFound {
		t.Errorf("Update() without cart error = %v, want ErrCartNotFound", err)
	}
	if _, err := e.Cart.Clear(ctx, u.ID); err != ErrCartNotFound {
		t.Errorf("Clear() without cart error = %v, want ErrCartNotFound", err)
	}

	if _, err := e.Cart.Add(ctx, u.ID, models.CartItemRequest{ProductID: a.ID}); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := e.Cart.Add(ctx, u.ID, models.CartItemRequest{ProductID: b.ID}); err != nil {
		t.Fatalf("add b: %v", err)
	}

	cart, err := e.Cart.Update(ctx, u.ID, models.CartItemRequest{ProductID: a.ID, Quantity: qty(4)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if cart.Total != 23 {
		t.Errorf("expected total 23, got %v", cart.Total)
	}
	if cart.Items[0].ProductID != a.ID || cart.Items[1].ProductID != b.ID {
		t.Error("expected line order to be preserved")
	}

	if _, err := e.Cart.Update(ctx, u.ID, models.CartItemRequest{ProductID: a.ID, Quantity: qty(11)}); err != ErrNotEnoughStock {
		t.Errorf("Update() over stock error = %v", err)
	}
	if _, err := e.Cart.Update(ctx, u.ID, models.CartItemRequest{ProductID: a.ID}); err != ErrInvalidQuantity {
		t.Errorf("Update() without quantity error = %v", err)
	}
	if _, err := e.Cart.Update(ctx, u.ID, models.CartItemRequest{ProductID: uuid.NewString(), Quantity: qty(1)}); err != ErrItemNotInCart {
		t.Errorf("Update() unknown line error = %v", err)
	}

	cart, err = e.Cart.Remove(ctx, u.ID, a.ID)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Total != 3 {
		t.Errorf("unexpected cart after remove: %+v", cart)
	}
	if _, err := e.Cart.Remove(ctx, u.ID, a.ID); err != ErrItemNotInCart {
		t.Errorf("second Remove() error = %v", err)
	}

	cart, err = e.Cart.Clear(ctx, u.ID)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(cart.Items) != 0 || cart.Total != 0 {
		t.Errorf("unexpected cart after clear: %+v", cart)
	}
}
