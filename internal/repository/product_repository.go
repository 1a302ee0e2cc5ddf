package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

// GormProductRepository implements ProductRepository on a SQL database
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new GORM-backed product repository
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List returns products matching the filter. Inactive products are excluded
// unless the filter asks for them.
func (r *GormProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := database.Conn(ctx, r.db).Model(&models.Product{})

	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStock {
		q = q.Where("stock > 0")
	}
	if filter.Featured {
		q = q.Where("featured = ?", true)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	switch filter.Sort {
	case models.SortPriceAsc:
		q = q.Order("price ASC").Order("name ASC")
	case models.SortPriceDesc:
		q = q.Order("price DESC").Order("name ASC")
	case models.SortNewest:
		q = q.Order("created_at DESC")
	case models.SortNameAsc:
		q = q.Order("name ASC")
	case models.SortNameDesc:
		q = q.Order("name DESC")
	default:
		q = q.Order("featured DESC").Order("created_at DESC")
	}

	products := make([]models.Product, 0)
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a product by its ID regardless of its active flag
func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := database.Conn(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return &p, nil
}

func (r *GormProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	if err := database.Conn(ctx, r.db).First(&p, "name = ?", name).Error; err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translate(database.Conn(ctx, r.db).Create(p).Error, ErrProductNotFound)
}

// Update overwrites every mutable column of an existing product
func (r *GormProductRepository) Update(ctx context.Context, p *models.Product) error {
	res := database.Conn(ctx, r.db).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return translate(res.Error, ErrProductNotFound)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock removes qty units only if that many are available.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	res := database.Conn(ctx, r.db).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	res := database.Conn(ctx, r.db).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
