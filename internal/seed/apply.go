package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
)

const defaultValidDays = 365

// Result counts what Apply inserted and what already existed.
type Result struct {
	ProductsCreated int
	ProductsSkipped int
	CouponsCreated  int
	CouponsSkipped  int
}

// Apply inserts products missing by name and coupons missing by code.
// Existing rows are never modified.
func Apply(ctx context.Context, doc *Document, products repository.ProductRepository, coupons repository.CouponRepository, now time.Time) (Result, error) {
	var res Result

	for _, ps := range doc.Products {
		_, err := products.GetByName(ctx, ps.Name)
		if err == nil {
			res.ProductsSkipped++
			continue
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return res, fmt.Errorf("lookup product %q: %w", ps.Name, err)
		}

		if err := models.Validate(ps.request()); err != nil {
			return res, fmt.Errorf("product %q: %w", ps.Name, err)
		}
		if err := products.Create(ctx, ps.product()); err != nil {
			return res, fmt.Errorf("create product %q: %w", ps.Name, err)
		}
		res.ProductsCreated++
	}

	for _, cs := range doc.Coupons {
		_, err := coupons.GetByCode(ctx, cs.Code)
		if err == nil {
			res.CouponsSkipped++
			continue
		}
		if !errors.Is(err, repository.ErrCouponNotFound) {
			return res, fmt.Errorf("lookup coupon %q: %w", cs.Code, err)
		}

		c := cs.coupon(now)
		if c.Code == "" {
			return res, fmt.Errorf("coupon without code")
		}
		if err := coupons.Create(ctx, c); err != nil {
			return res, fmt.Errorf("create coupon %q: %w", cs.Code, err)
		}
		res.CouponsCreated++
	}

	return res, nil
}

func (ps ProductSeed) request() *models.ProductRequest {
	return &models.ProductRequest{
		Name:        ps.Name,
		Description: ps.Description,
		Price:       ps.Price,
		Category:    ps.Category,
		ImageURL:    ps.ImageURL,
		Stock:       ps.Stock,
		Discount:    ps.Discount,
	}
}

func (ps ProductSeed) product() *models.Product {
	return &models.Product{
		Name:        ps.Name,
		Description: ps.Description,
		Price:       ps.Price,
		Category:    ps.Category,
		ImageURL:    ps.ImageURL,
		Stock:       ps.Stock,
		Featured:    ps.Featured,
		Discount:    ps.Discount,
		Active:      !ps.Inactive,
	}
}

func (cs CouponSeed) coupon(now time.Time) *models.Coupon {
	expires := now.AddDate(0, 0, defaultValidDays)
	switch {
	case cs.ExpirationDate != nil:
		expires = *cs.ExpirationDate
	case cs.ValidDays > 0:
		expires = now.AddDate(0, 0, cs.ValidDays)
	}
	discountType := cs.DiscountType
	if discountType == "" {
		discountType = models.DiscountPercentage
	}
	return &models.Coupon{
		Code:            models.NormalizeCouponCode(cs.Code),
		Discount:        cs.Discount,
		DiscountType:    discountType,
		MinimumPurchase: cs.MinimumPurchase,
		ExpirationDate:  expires,
		IsActive:        true,
		MaxUses:         cs.MaxUses,
		Description:     cs.Description,
	}
}
