package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartService manages each user's shopping cart
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	tx       Transactor
	log      *logger.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, tx Transactor, log *logger.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		tx:       tx,
		log:      log.With("service", "CartService"),
	}
}

// Get returns the user's cart with product details, creating an empty cart
// on first access.
func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID, true)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
		if err := s.carts.Create(ctx, cart); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, fmt.Errorf("create cart: %w", err)
			}
			return s.load(ctx, userID)
		}
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return normalizeCart(cart), nil
}

// Add puts quantity units of a product in the cart, merging with an
// existing line and refreshing its price.
func (s *CartService) Add(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error) {
	quantity := req.QuantityOr(1)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.activeProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return ErrInvalidQuantity
		}

		cart, err := s.carts.GetByUserID(ctx, userID, false)
		if errors.Is(err, repository.ErrCartNotFound) {
			cart = &models.Cart{UserID: userID}
			if err := s.carts.Create(ctx, cart); err != nil {
				return fmt.Errorf("create cart: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}

		wanted := quantity
		idx := cart.Find(product.ID)
		if idx >= 0 {
			wanted += cart.Items[idx].Quantity
		}
		if product.Stock < wanted {
			return ErrNotEnoughStock
		}

		price := product.EffectivePrice()
		if idx >= 0 {
			cart.Items[idx].Quantity = wanted
			cart.Items[idx].Price = price
		} else {
			cart.Items = append(cart.Items, models.CartItem{ProductID: product.ID, Quantity: quantity, Price: price})
		}
		return s.save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

// Update sets the quantity of an existing line.
func (s *CartService) Update(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error) {
	quantity := req.QuantityOr(0)
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.existingCart(ctx, userID)
		if err != nil {
			return err
		}
		idx := cart.Find(req.ProductID)
		if idx < 0 {
			return ErrItemNotInCart
		}

		product, err := s.activeProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return ErrNotEnoughStock
		}

		cart.Items[idx].Quantity = quantity
		return s.save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

// Remove drops a product's line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.existingCart(ctx, userID)
		if err != nil {
			return err
		}
		idx := cart.Find(productID)
		if idx < 0 {
			return ErrItemNotInCart
		}

		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return s.save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.existingCart(ctx, userID)
		if err != nil {
			return err
		}
		cart.Items = nil
		return s.save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCart(cart), nil
}

func (s *CartService) existingCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID, false)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) activeProduct(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, ErrProductUnavailable
	}
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.Active {
		return nil, ErrProductUnavailable
	}
	return p, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	return normalizeCart(cart), nil
}

func normalizeCart(c *models.Cart) *models.Cart {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c
}
