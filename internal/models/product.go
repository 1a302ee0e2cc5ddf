package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product categories carried by the store.
const (
	CategorySupplements = "supplements"
	CategoryApparel     = "apparel"
	CategoryEquipment   = "equipment"
	CategoryAccessories = "accessories"
)

// Categories lists every valid product category.
var Categories = []string{CategorySupplements, CategoryApparel, CategoryEquipment, CategoryAccessories}

// IsValidCategory reports whether c is a known product category.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents an item in the catalog
type Product struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Category    string    `gorm:"not null;index" json:"category"`
	ImageURL    string    `gorm:"not null" json:"imageUrl"`
	Stock       int       `gorm:"not null" json:"stock"`
	Featured    bool      `gorm:"not null" json:"featured"`
	Discount    float64   `gorm:"not null" json:"discount"`
	Active      bool      `gorm:"not null;index" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// EffectivePrice is the unit price after the product discount.
func (p *Product) EffectivePrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return RoundCents(p.Price * (1 - p.Discount/100))
}

// ProductRequest is the admin payload for creating or replacing a product.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,oneof=supplements apparel equipment accessories"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Featured    bool    `json:"featured"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	Active      *bool   `json:"active"`
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category        string
	MinPrice        *float64
	MaxPrice        *float64
	InStock         bool
	Featured        bool
	Query           string
	Sort            string
	IncludeInactive bool
}

// Sort orders accepted by product listings.
const (
	SortFeatured  = "featured"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNewest    = "newest"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// IsValidSort reports whether s is an accepted product sort order.
func IsValidSort(s string) bool {
	switch s {
	case "", SortFeatured, SortPriceAsc, SortPriceDesc, SortNewest, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
