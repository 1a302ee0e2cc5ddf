package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/handlers"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/middleware"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/telemetry"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Coupons  *handlers.CouponHandler
	Articles *handlers.ArticleHandler
}

// Options configures the cross-cutting middleware.
type Options struct {
	Authenticator  middleware.Authenticator
	RateLimit      config.RateLimitConfig
	AllowedOrigins []string
	ServiceName    string
	Logger         *logger.Logger
}

// NewRouter builds the API router.
func NewRouter(h Handlers, opts Options) http.Handler {
	log := opts.Logger
	requireAuth := middleware.RequireAuth(opts.Authenticator, log)
	optionalAuth := middleware.OptionalAuth(opts.Authenticator)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NewRateLimiter(opts.RateLimit).Handler)
			r.Post("/signup", h.Auth.Signup)
			r.Post("/signup-admin", h.Auth.SignupAdmin)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/refresh-token", h.Auth.RefreshToken)
			r.Post("/forgot-username", h.Auth.ForgotUsername)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Get("/featured", h.Products.Featured)
			r.Get("/search", h.Products.Search)
			r.Get("/category/{category}", h.Products.ByCategory)
			r.Get("/{productId}", h.Products.GetProduct)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Products.AdminList)
				r.Post("/", h.Products.Create)
				r.Get("/{productId}", h.Products.AdminGet)
				r.Put("/{productId}", h.Products.Update)
				r.Delete("/{productId}", h.Products.Delete)
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", h.Coupons.AdminList)
				r.Post("/", h.Coupons.AdminCreate)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Cart.GetCart)
			r.Post("/add", h.Cart.AddItem)
			r.Put("/update", h.Cart.UpdateItem)
			r.Delete("/remove/{productId}", h.Cart.RemoveItem)
			r.Delete("/clear", h.Cart.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Orders.CreateOrder)
			r.Get("/user", h.Orders.ListOrders)
			r.Get("/{orderId}", h.Orders.GetOrder)
			r.With(middleware.RequireAdmin).Put("/{orderId}/status", h.Orders.UpdateStatus)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/create-test", h.Coupons.CreateTest)
			r.Post("/validate", h.Coupons.Validate)
			r.With(requireAuth).Post("/apply", h.Coupons.Apply)
			r.With(requireAuth).Get("/{code}", h.Coupons.GetCoupon)
		})

		r.Route("/articles", func(r chi.Router) {
			r.With(optionalAuth).Get("/", h.Articles.ListArticles)
			r.With(optionalAuth).Get("/{articleId}", h.Articles.GetArticle)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, middleware.RequireAdmin)
				r.Post("/", h.Articles.CreateArticle)
				r.Put("/{articleId}", h.Articles.UpdateArticle)
				r.Delete("/{articleId}", h.Articles.DeleteArticle)
			})
		})
	})

	return telemetry.Handler(r, opts.ServiceName)
}
