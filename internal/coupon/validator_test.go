package coupon

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	percent := func() *models.Coupon {
		return &models.Coupon{
			Code:            "SPRING20",
			Discount:        20,
			DiscountType:    models.DiscountPercentage,
			MinimumPurchase: 50,
			ExpirationDate:  future,
			IsActive:        true,
		}
	}

	tests := []struct {
		name       string
		coupon     func() *models.Coupon
		amount     *float64
		wantErr    error
		wantMin    bool
		wantAmount *float64
	}{
		{
			name:       "percentage with amount",
			coupon:     percent,
			amount:     ptr(100.0),
			wantAmount: ptr(20.0),
		},
		{
			name:   "percentage without amount skips minimum",
			coupon: percent,
		},
		{
			name:    "below minimum",
			coupon:  percent,
			amount:  ptr(49.99),
			wantMin: true,
		},
		{
			name: "fixed without amount",
			coupon: func() *models.Coupon {
				c := percent()
				c.DiscountType = models.DiscountFixed
				c.Discount = 10
				return c
			},
			wantAmount: ptr(10.0),
		},
		{
			name: "inactive",
			coupon: func() *models.Coupon {
				c := percent()
				c.IsActive = false
				return c
			},
			wantErr: ErrInvalid,
		},
		{
			name: "expired",
			coupon: func() *models.Coupon {
				c := percent()
				c.ExpirationDate = now.Add(-time.Minute)
				return c
			},
			wantErr: ErrInvalid,
		},
		{
			name:    "missing",
			coupon:  func() *models.Coupon { return nil },
			wantErr: ErrInvalid,
		},
		{
			name: "usage limit reached",
			coupon: func() *models.Coupon {
				c := percent()
				c.MaxUses = ptr(3)
				c.UsedCount = 3
				return c
			},
			amount:  ptr(100.0),
			wantErr: ErrExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := Validate(tt.coupon(), tt.amount, now)

			if tt.wantMin {
				var minErr *MinimumPurchaseError
				if !errors.As(err, &minErr) {
					t.Fatalf("expected MinimumPurchaseError, got %v", err)
				}
				if minErr.Minimum != 50 {
					t.Errorf("expected minimum 50, got %v", minErr.Minimum)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch {
			case tt.wantAmount == nil && quote.DiscountAmount != nil:
				t.Errorf("expected no discount amount, got %v", *quote.DiscountAmount)
			case tt.wantAmount != nil && quote.DiscountAmount == nil:
				t.Errorf("expected discount amount %v, got nil", *tt.wantAmount)
			case tt.wantAmount != nil && *quote.DiscountAmount != *tt.wantAmount:
				t.Errorf("expected discount amount %v, got %v", *tt.wantAmount, *quote.DiscountAmount)
			}
		})
	}
}

func TestDiscountFor(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		want     float64
	}{
		{"percentage", models.Coupon{Discount: 25, DiscountType: models.DiscountPercentage}, 80, 20},
		{"percentage rounds to cents", models.Coupon{Discount: 15, DiscountType: models.DiscountPercentage}, 33.33, 5},
		{"fixed", models.Coupon{Discount: 10, DiscountType: models.DiscountFixed}, 80, 10},
		{"fixed capped at subtotal", models.Coupon{Discount: 100, DiscountType: models.DiscountFixed}, 40, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscountFor(&tt.coupon, tt.subtotal); got != tt.want {
				t.Errorf("DiscountFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	t.Run("unloaded index admits everything", func(t *testing.T) {
		idx := NewIndex()
		if !idx.MayExist("ANYTHING") {
			t.Error("expected unloaded index to answer true")
		}
	})

	t.Run("loaded codes are found case-insensitively", func(t *testing.T) {
		idx := NewIndex()
		idx.Load([]string{"TEST25", "SPRING20"})

		for _, code := range []string{"TEST25", "test25", " spring20 "} {
			if !idx.MayExist(code) {
				t.Errorf("expected %q to be present", code)
			}
		}
		if idx.MayExist("NEVERISSUED") {
			t.Error("expected unknown code to be rejected")
		}
	})

	t.Run("add after load", func(t *testing.T) {
		idx := NewIndex()
		idx.Load(nil)
		if idx.MayExist("LATE10") {
			t.Fatal("expected empty index to reject code")
		}
		idx.Add("late10")
		if !idx.MayExist("LATE10") {
			t.Error("expected added code to be present")
		}
		if got := idx.Stats()["codes"]; got != 1 {
			t.Errorf("expected 1 code, got %v", got)
		}
	})
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	idx := NewIndex()
	idx.Load([]string{"TEST25"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			idx.Add(fmt.Sprintf("CODE%03d", i))
		}(i)
		go func() {
			defer wg.Done()
			if !idx.MayExist("TEST25") {
				t.Error("expected TEST25 to be present")
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		if code := fmt.Sprintf("CODE%03d", i); !idx.MayExist(code) {
			t.Errorf("expected %s to be present", code)
		}
	}
}
