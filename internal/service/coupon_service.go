package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/coupon"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

const testCouponCode = "TEST25"

// CouponService validates and redeems promotional codes
type CouponService struct {
	repo  repository.CouponRepository
	index *coupon.Index
	now   func() time.Time
	log   *logger.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(repo repository.CouponRepository, index *coupon.Index, log *logger.Logger) *CouponService {
	if index == nil {
		index = coupon.NewIndex()
	}
	return &CouponService{
		repo:  repo,
		index: index,
		now:   time.Now,
		log:   log.With("service", "CouponService"),
	}
}

// LoadIndex builds the code prefilter from every stored coupon.
func (s *CouponService) LoadIndex(ctx context.Context) error {
	codes, err := s.repo.Codes(ctx)
	if err != nil {
		return fmt.Errorf("load coupon codes: %w", err)
	}
	s.index.Load(codes)
	stats := s.index.Stats()
	s.log.Info("coupon index loaded",
		"codes", stats["codes"],
		"filter_bits", stats["filter_bits"],
		"hash_functions", stats["hash_functions"],
		"estimated_fp", stats["estimated_fp"],
	)
	return nil
}

// indexCurrent reports whether the index covers every stored coupon,
// reloading it when another process has issued codes since the last load.
func (s *CouponService) indexCurrent(ctx context.Context) (reloaded bool, err error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count coupons: %w", err)
	}
	if int(n) == s.index.Len() {
		return false, nil
	}
	if err := s.LoadIndex(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Validate checks a code against an optional order amount without
// redeeming it.
func (s *CouponService) Validate(ctx context.Context, req models.CouponValidateRequest) (*models.CouponQuote, error) {
	c, err := s.lookup(ctx, req.Code, ErrCouponInvalid)
	if err != nil {
		return nil, err
	}
	quote, err := coupon.Validate(c, req.TotalAmount, s.now())
	if err != nil {
		return nil, couponError(err)
	}
	return &quote, nil
}

// Apply redeems a code once.
func (s *CouponService) Apply(ctx context.Context, code string) (*models.CouponQuote, error) {
	c, err := s.lookup(ctx, code, ErrCouponInvalid)
	if err != nil {
		return nil, err
	}
	quote, err := coupon.Validate(c, nil, s.now())
	if err != nil {
		return nil, couponError(err)
	}
	if err := s.repo.IncrementUsage(ctx, c.ID); err != nil {
		return nil, couponError(err)
	}
	s.log.Info("coupon applied", "code", c.Code)
	return &quote, nil
}

// Redeem validates code against subtotal, records one use and returns the
// discount. It runs inside the caller's checkout transaction.
func (s *CouponService) Redeem(ctx context.Context, code string, subtotal float64) (*models.Coupon, float64, error) {
	c, err := s.lookup(ctx, code, ErrCouponInvalid)
	if err != nil {
		return nil, 0, err
	}
	if _, err := coupon.Validate(c, &subtotal, s.now()); err != nil {
		return nil, 0, couponError(err)
	}
	if err := s.repo.IncrementUsage(ctx, c.ID); err != nil {
		return nil, 0, couponError(err)
	}
	return c, coupon.DiscountFor(c, subtotal), nil
}

// Get returns a coupon's details.
func (s *CouponService) Get(ctx context.Context, code string) (*models.Coupon, error) {
	return s.lookup(ctx, code, ErrCouponNotFound)
}

// CreateTest ensures the TEST25 coupon exists. created reports whether it
// was inserted by this call.
func (s *CouponService) CreateTest(ctx context.Context) (c *models.Coupon, created bool, err error) {
	existing, err := s.repo.GetByCode(ctx, testCouponCode)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrCouponNotFound) {
		return nil, false, fmt.Errorf("get test coupon: %w", err)
	}

	maxUses := 100
	c = &models.Coupon{
		Code:            testCouponCode,
		Discount:        25,
		DiscountType:    models.DiscountPercentage,
		MinimumPurchase: 50,
		ExpirationDate:  s.now().AddDate(1, 0, 0),
		IsActive:        true,
		MaxUses:         &maxUses,
		Description:     "25% off your purchase of $50 or more (Test Coupon)",
	}
	if err := s.create(ctx, c); err != nil {
		if errors.Is(err, ErrCouponExists) {
			existing, err := s.repo.GetByCode(ctx, testCouponCode)
			return existing, false, err
		}
		return nil, false, err
	}
	return c, true, nil
}

// List returns every coupon.
func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// Create issues a new coupon.
func (s *CouponService) Create(ctx context.Context, req models.CouponRequest) (*models.Coupon, error) {
	discountType := req.DiscountType
	if discountType == "" {
		discountType = models.DiscountPercentage
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := &models.Coupon{
		Code:            models.NormalizeCouponCode(req.Code),
		Discount:        req.Discount,
		DiscountType:    discountType,
		MinimumPurchase: req.MinimumPurchase,
		ExpirationDate:  req.ExpirationDate,
		IsActive:        active,
		MaxUses:         req.MaxUses,
		Description:     req.Description,
	}
	if err := s.create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) create(ctx context.Context, c *models.Coupon) error {
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCouponExists
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	s.index.Add(c.Code)
	s.log.Info("coupon created", "code", c.Code)
	return nil
}

// lookup finds a coupon by code, consulting the prefilter first. missing
// is returned for unknown codes.
func (s *CouponService) lookup(ctx context.Context, code string, missing *Error) (*models.Coupon, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	if !s.index.MayExist(code) {
		reloaded, err := s.indexCurrent(ctx)
		if err != nil {
			return nil, err
		}
		if !reloaded || !s.index.MayExist(code) {
			return nil, missing
		}
	}

	c, err := s.repo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrCouponNotFound) {
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func couponError(err error) error {
	var minErr *coupon.MinimumPurchaseError
	switch {
	case errors.As(err, &minErr):
		return badRequest("This coupon requires a minimum purchase of $%g", minErr.Minimum).
			with("minimumPurchase", minErr.Minimum)
	case errors.Is(err, coupon.ErrInvalid):
		return ErrCouponInvalid
	case errors.Is(err, coupon.ErrExhausted), errors.Is(err, repository.ErrCouponExhausted):
		return ErrCouponExhausted
	default:
		return err
	}
}
