package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/cache"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// ProductService handles catalog reads and admin product management
type ProductService struct {
	repo  repository.ProductRepository
	cache cache.ProductCache
	log   *logger.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, c cache.ProductCache, log *logger.Logger) *ProductService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ProductService{
		repo:  repo,
		cache: c,
		log:   log.With("service", "ProductService"),
	}
}

// List returns active products matching the filter. Results are cached.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.IncludeInactive = false
	if filter.Category != "" && !models.IsValidCategory(filter.Category) {
		return nil, badRequest("Invalid category")
	}
	if !models.IsValidSort(filter.Sort) {
		return nil, badRequest("Invalid sort option")
	}

	key := filterKey(filter)
	var products []models.Product
	slot, hit, err := s.cache.Get(ctx, key, &products)
	if err != nil {
		s.log.Warn("product cache read failed", "key", key, "error", err)
	}
	if hit {
		return products, nil
	}

	products, err = s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	if err := s.cache.Set(ctx, slot, products); err != nil {
		s.log.Warn("product cache write failed", "key", key, "error", err)
	}
	return products, nil
}

// Featured returns active featured products.
func (s *ProductService) Featured(ctx context.Context) ([]models.Product, error) {
	return s.List(ctx, models.ProductFilter{Featured: true})
}

// ByCategory returns active products in one category.
func (s *ProductService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if !models.IsValidCategory(category) {
		return nil, badRequest("Invalid category")
	}
	return s.List(ctx, models.ProductFilter{Category: category})
}

// Search matches query against product names and descriptions.
func (s *ProductService) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, badRequest("Search query is required")
	}
	return s.List(ctx, models.ProductFilter{Query: query})
}

// Get returns an active product.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// AdminList returns every product, including inactive ones.
func (s *ProductService) AdminList(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx, models.ProductFilter{IncludeInactive: true, Sort: models.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// AdminGet returns a product regardless of its active flag.
func (s *ProductService) AdminGet(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, badRequest("Invalid product ID")
	}
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	p := &models.Product{Active: true}
	applyProductRequest(p, req)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	s.Invalidate(ctx)
	return p, nil
}

// Update replaces a product's fields. An omitted active flag keeps its
// current value.
func (s *ProductService) Update(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	p, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductRequest(p, req)

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.log.Info("product updated", "product_id", p.ID)
	s.Invalidate(ctx)
	return p, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return badRequest("Invalid product ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info("product deleted", "product_id", id)
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops cached catalog reads. Failures are logged; entries
// expire on their own.
func (s *ProductService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("product cache invalidation failed", "error", err)
	}
}

func applyProductRequest(p *models.Product, req models.ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.Category = req.Category
	p.ImageURL = req.ImageURL
	p.Stock = req.Stock
	p.Featured = req.Featured
	p.Discount = req.Discount
	if req.Active != nil {
		p.Active = *req.Active
	}
}

func filterKey(f models.ProductFilter) string {
	price := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *v)
	}
	return fmt.Sprintf("list:c=%s:min=%s:max=%s:stock=%t:feat=%t:q=%s:sort=%s",
		f.Category, price(f.MinPrice), price(f.MaxPrice), f.InStock, f.Featured,
		strings.ToLower(f.Query), f.Sort)
}
