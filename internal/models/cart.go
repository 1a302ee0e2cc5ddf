package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart holds the products a user intends to buy. Each user has at most one.
type Cart struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Total     float64    `gorm:"not null" json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Recalculate sets Total from the item price snapshots.
func (c *Cart) Recalculate() {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = RoundCents(total)
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartItem is one product line; Price is the discounted unit price at the
// time the line was last touched.
type CartItem struct {
	ID        string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	CartID    string   `gorm:"type:varchar(36);not null;index" json:"-"`
	ProductID string   `gorm:"type:varchar(36);not null" json:"productId"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	Price     float64  `gorm:"not null" json:"price"`
	Position  int      `gorm:"not null" json:"-"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CartItemRequest adds or updates a cart line. A nil quantity means one.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// QuantityOr returns the requested quantity or def when it was omitted.
func (r CartItemRequest) QuantityOr(def int) int {
	if r.Quantity == nil {
		return def
	}
	return *r.Quantity
}
