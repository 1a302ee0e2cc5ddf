package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/cache"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/coupon"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/handlers"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/mailer"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/seed"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/server"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/telemetry"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

const version = "1.0.0"

func main() {
	seedSources := pflag.StringSlice("seed", nil, "seed sources to import at startup (paths, http(s) URLs, or \"builtin\")")
	logLevel := pflag.String("log-level", "", "log level override (debug, info, warn, error)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply schema migrations and seeds, then exit")
	pflag.Parse()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if pflag.CommandLine.Changed("seed") {
		cfg.Seed.Sources = *seedSources
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	if err := run(cfg, *migrateOnly, log); err != nil {
		log.Error("server exited with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrateOnly bool, log *logger.Logger) error {
	ctx := context.Background()

	log.Info("starting striv storefront api",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
	)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate || migrateOnly {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("database schema migrated")
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	articleRepo := repository.NewArticleRepository(db)

	if len(cfg.Seed.Sources) > 0 {
		doc, err := seed.NewLoader(log).Load(ctx, cfg.Seed.Sources)
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}
		res, err := seed.Apply(ctx, doc, productRepo, couponRepo, time.Now())
		if err != nil {
			return fmt.Errorf("apply seed data: %w", err)
		}
		log.Info("seed data applied",
			"products_created", res.ProductsCreated,
			"products_skipped", res.ProductsSkipped,
			"coupons_created", res.CouponsCreated,
			"coupons_skipped", res.CouponsSkipped,
		)
	}

	if migrateOnly {
		log.Info("migrate-only run complete")
		return nil
	}

	productCache, err := cache.New(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer productCache.Close()

	// Initialize services
	tx := database.NewTransactor(db)
	productService := service.NewProductService(productRepo, productCache, log)
	authService := service.NewAuthService(userRepo, auth.NewIssuer(cfg.Auth), mailer.New(cfg.Mail, log), cfg.Auth, cfg.Server.PublicURL, log)
	cartService := service.NewCartService(cartRepo, productRepo, tx, log)
	couponService := service.NewCouponService(couponRepo, coupon.NewIndex(), log)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, couponService, tx, productService, log)
	articleService := service.NewArticleService(articleRepo, log)

	if err := couponService.LoadIndex(ctx); err != nil {
		return err
	}

	router := server.NewRouter(server.Handlers{
		Health:   handlers.NewHealthHandler(sqlDB, version, log),
		Auth:     handlers.NewAuthHandler(authService, log),
		Products: handlers.NewProductHandler(productService, log),
		Cart:     handlers.NewCartHandler(cartService, log),
		Orders:   handlers.NewOrderHandler(orderService, log),
		Coupons:  handlers.NewCouponHandler(couponService, log),
		Articles: handlers.NewArticleHandler(articleService, log),
	}, server.Options{
		Authenticator:  authService,
		RateLimit:      cfg.RateLimit,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     log.With("component", "http").StdLogger(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
