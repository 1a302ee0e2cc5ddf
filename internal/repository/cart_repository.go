package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

type CartRepository interface {
	GetByUserID(ctx context.Context, userID string, withProducts bool) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// GetByUserID loads the user's cart and its lines, optionally with the
// current product rows attached to each line.
func (r *GormCartRepository) GetByUserID(ctx context.Context, userID string, withProducts bool) (*models.Cart, error) {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	q := database.Conn(ctx, r.db).Preload("Items", byPosition)
	if withProducts {
		q = q.Preload("Items.Product")
	}

	var cart models.Cart
	if err := q.First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, ErrCartNotFound)
	}
	return &cart, nil
}

func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return translate(database.Conn(ctx, r.db).Omit(clause.Associations).Create(cart).Error, ErrCartNotFound)
}

// Save replaces the cart's lines with cart.Items and stores the total.
func (r *GormCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	conn := database.Conn(ctx, r.db)

	if err := conn.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	if len(cart.Items) > 0 {
		lines := make([]models.CartItem, len(cart.Items))
		for i, item := range cart.Items {
			lines[i] = models.CartItem{
				CartID:    cart.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Position:  i,
			}
		}
		if err := conn.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			cart.Items[i].ID = lines[i].ID
			cart.Items[i].CartID = cart.ID
		}
	}

	res := conn.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("total", cart.Total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}
