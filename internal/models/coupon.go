package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a promotional code redeemable at checkout
type Coupon struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code            string    `gorm:"not null;uniqueIndex" json:"code"`
	Discount        float64   `gorm:"not null" json:"discount"`
	DiscountType    string    `gorm:"not null" json:"discountType"`
	MinimumPurchase float64   `gorm:"not null" json:"minimumPurchase"`
	ExpirationDate  time.Time `gorm:"not null" json:"expirationDate"`
	IsActive        bool      `gorm:"not null" json:"isActive"`
	MaxUses         *int      `json:"maxUses"`
	UsedCount       int       `gorm:"not null" json:"usedCount"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Code = NormalizeCouponCode(c.Code)
	return nil
}

// Exhausted reports whether the coupon reached its usage limit.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

// NormalizeCouponCode trims and uppercases a code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponRequest is the admin payload for issuing a coupon.
type CouponRequest struct {
	Code            string    `json:"code" validate:"required,max=32"`
	Discount        float64   `json:"discount" validate:"gte=0,lte=100"`
	DiscountType    string    `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	MinimumPurchase float64   `json:"minimumPurchase" validate:"gte=0"`
	ExpirationDate  time.Time `json:"expirationDate" validate:"required"`
	IsActive        *bool     `json:"isActive"`
	MaxUses         *int      `json:"maxUses" validate:"omitempty,gte=1"`
	Description     string    `json:"description"`
}

type CouponValidateRequest struct {
	Code        string   `json:"code"`
	TotalAmount *float64 `json:"totalAmount"`
}

type CouponApplyRequest struct {
	Code string `json:"code"`
}

// CouponQuote is the outcome of validating a coupon against an amount.
type CouponQuote struct {
	Code            string   `json:"code"`
	Discount        float64  `json:"discount"`
	DiscountType    string   `json:"discountType"`
	DiscountAmount  *float64 `json:"discountAmount"`
	MinimumPurchase float64  `json:"minimumPurchase"`
	Description     string   `json:"description"`
}
