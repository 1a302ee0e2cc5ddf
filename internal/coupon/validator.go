package coupon

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

var (
	// ErrInvalid covers unknown, inactive and expired coupons alike.
	ErrInvalid   = errors.New("invalid or expired coupon code")
	ErrExhausted = errors.New("coupon has reached its maximum usage limit")
)

// MinimumPurchaseError is returned when the order amount is below the
// coupon's threshold.
type MinimumPurchaseError struct {
	Minimum float64
}

func (e *MinimumPurchaseError) Error() string {
	return fmt.Sprintf("this coupon requires a minimum purchase of $%g", e.Minimum)
}

// Validate checks whether c can be redeemed at now against amount. amount
// is optional: when nil the minimum purchase rule is skipped and a
// percentage coupon's discount amount is left unknown.
func Validate(c *models.Coupon, amount *float64, now time.Time) (models.CouponQuote, error) {
	if c == nil || !c.IsActive || !c.ExpirationDate.After(now) {
		return models.CouponQuote{}, ErrInvalid
	}

	if amount != nil && *amount > 0 && c.MinimumPurchase > 0 && *amount < c.MinimumPurchase {
		return models.CouponQuote{}, &MinimumPurchaseError{Minimum: c.MinimumPurchase}
	}

	if c.Exhausted() {
		return models.CouponQuote{}, ErrExhausted
	}

	quote := models.CouponQuote{
		Code:            c.Code,
		Discount:        c.Discount,
		DiscountType:    c.DiscountType,
		MinimumPurchase: c.MinimumPurchase,
		Description:     c.Description,
	}
	switch {
	case c.DiscountType == models.DiscountFixed:
		v := c.Discount
		quote.DiscountAmount = &v
	case amount != nil:
		v := DiscountFor(c, *amount)
		quote.DiscountAmount = &v
	}
	return quote, nil
}

// DiscountFor returns the amount taken off subtotal, never more than the
// subtotal itself.
func DiscountFor(c *models.Coupon, subtotal float64) float64 {
	var off float64
	switch c.DiscountType {
	case models.DiscountFixed:
		off = c.Discount
	default:
		off = subtotal * c.Discount / 100
	}
	off = math.Min(off, subtotal)
	if off < 0 {
		off = 0
	}
	return models.RoundCents(off)
}
