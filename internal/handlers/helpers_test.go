package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/cache"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/coupon"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/mailer"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/testutil"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, mailer.Message) error { return nil }

// testEnv wires real services over a private sqlite database.
type testEnv struct {
	products *repository.GormProductRepository
	users    *repository.GormUserRepository
	coupons  *repository.GormCouponRepository

	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Coupons  *CouponHandler
	Articles *ArticleHandler
	Auth     *AuthHandler

	couponService *service.CouponService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := database.NewTransactor(db)

	e := &testEnv{
		products: repository.NewProductRepository(db),
		users:    repository.NewUserRepository(db),
		coupons:  repository.NewCouponRepository(db),
	}
	carts := repository.NewCartRepository(db)

	authCfg := config.AuthConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		AdminSecret:   "let-me-in",
		ResetTTL:      time.Hour,
	}

	productService := service.NewProductService(e.products, cache.Noop{}, log)
	e.couponService = service.NewCouponService(e.coupons, coupon.NewIndex(), log)
	orderService := service.NewOrderService(repository.NewOrderRepository(db), carts, e.products, e.couponService, tx, productService, log)

	e.Products = NewProductHandler(productService, log)
	e.Cart = NewCartHandler(service.NewCartService(carts, e.products, tx, log), log)
	e.Orders = NewOrderHandler(orderService, log)
	e.Coupons = NewCouponHandler(e.couponService, log)
	e.Articles = NewArticleHandler(service.NewArticleService(repository.NewArticleRepository(db), log), log)
	e.Auth = NewAuthHandler(service.NewAuthService(e.users, auth.NewIssuer(authCfg), nopMailer{}, authCfg, "http://shop.test", log), log)
	return e
}

func (e *testEnv) product(t *testing.T, name string, price float64, stock int) *models.Product {
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
	if err := e.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *testEnv) user(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsAdmin: admin}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// asUser stands in for RequireAuth by attaching u to every request.
func asUser(u *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u != nil {
				r = r.WithContext(auth.WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	decode(t, w, &body)
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected error body, got %v", body)
	}
	return body
}

func newRouter(u *models.User, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(u))
	mount(r)
	return r
}
