package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Codes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	IncrementUsage(ctx context.Context, id string) error
}

type GormCouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	return translate(database.Conn(ctx, r.db).Create(c).Error, ErrCouponNotFound)
}

// GetByCode looks a coupon up by its normalized code.
func (r *GormCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := database.Conn(ctx, r.db).First(&c, "code = ?", models.NormalizeCouponCode(code)).Error
	if err != nil {
		return nil, translate(err, ErrCouponNotFound)
	}
	return &c, nil
}

func (r *GormCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	coupons := make([]models.Coupon, 0)
	if err := database.Conn(ctx, r.db).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Codes returns every issued coupon code.
func (r *GormCouponRepository) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := database.Conn(ctx, r.db).Model(&models.Coupon{}).Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Count returns the number of issued coupons. Coupons are never deleted, so
// a changed count means codes were added.
func (r *GormCouponRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := database.Conn(ctx, r.db).Model(&models.Coupon{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// IncrementUsage records one redemption unless the coupon is at its limit.
func (r *GormCouponRepository) IncrementUsage(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).
		Model(&models.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponExhausted
	}
	return nil
}
