package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/cache"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/coupon"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/mailer"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/testutil"
)

// env wires every service against one private database.
type env struct {
	products *repository.GormProductRepository
	users    *repository.GormUserRepository
	carts    *repository.GormCartRepository
	coupons  *repository.GormCouponRepository

	Products *ProductService
	Auth     *AuthService
	Cart     *CartService
	Orders   *OrderService
	Coupons  *CouponService
	Articles *ArticleService

	mail *recordingMailer
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type countingCache struct {
	cache.Noop
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := database.NewTransactor(db)

	e := &env{
		products: repository.NewProductRepository(db),
		users:    repository.NewUserRepository(db),
		carts:    repository.NewCartRepository(db),
		coupons:  repository.NewCouponRepository(db),
		mail:     &recordingMailer{},
	}
	orders := repository.NewOrderRepository(db)

	authCfg := config.AuthConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		AdminSecret:   "let-me-in",
		ResetTTL:      time.Hour,
	}

	e.Products = NewProductService(e.products, cache.Noop{}, log)
	e.Auth = NewAuthService(e.users, auth.NewIssuer(authCfg), e.mail, authCfg, "http://shop.test/", log)
	e.Cart = NewCartService(e.carts, e.products, tx, log)
	e.Coupons = NewCouponService(e.coupons, coupon.NewIndex(), log)
	e.Orders = NewOrderService(orders, e.carts, e.products, e.Coupons, tx, e.Products, log)
	e.Articles = NewArticleService(repository.NewArticleRepository(db), log)
	return e
}

func (e *env) product(t *testing.T, name string, price float64, stock int, mutate ...func(*models.Product)) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Category:    models.CategoryEquipment,
		ImageURL:    "/img/" + name + ".jpg",
		Stock:       stock,
		Active:      true,
	}
	for _, m := range mutate {
		m(p)
	}
	if err := e.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *env) user(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: hash, IsAdmin: admin}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *env) coupon(t *testing.T, c *models.Coupon) *models.Coupon {
	t.Helper()
	if c.ExpirationDate.IsZero() {
		c.ExpirationDate = time.Now().Add(24 * time.Hour)
	}
	if c.DiscountType == "" {
		c.DiscountType = models.DiscountPercentage
	}
	c.IsActive = true
	if err := e.coupons.Create(context.Background(), c); err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return c
}

func qty(n int) *int { return &n }

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %v, got %v", kind, err)
	}
}
