package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// CatalogInvalidator drops cached catalog reads after stock changes.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// OrderService handles checkout and order lifecycle
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	coupons  *CouponService
	tx       Transactor
	catalog  CatalogInvalidator
	tracer   trace.Tracer
	log      *logger.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	coupons *CouponService,
	tx Transactor,
	catalog CatalogInvalidator,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		coupons:  coupons,
		tx:       tx,
		catalog:  catalog,
		tracer:   otel.Tracer("github.com/Lixing-Zhang/striv-storefront/backend/internal/service"),
		log:      log.With("service", "OrderService"),
	}
}

// Create turns the user's cart into a pending order. Stock checks, coupon
// redemption, stock decrement, order insert and cart clearing share one
// transaction.
func (s *OrderService) Create(ctx context.Context, userID string, req models.OrderRequest) (order *models.Order, err error) {
	if req.ShippingAddress == nil || req.PaymentMethod == "" {
		return nil, badRequest("Shipping address and payment method are required")
	}
	if err := models.Validate(req.ShippingAddress); err != nil {
		return nil, badRequest("%s", err.Error())
	}

	ctx, span := s.tracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("order.coupon", req.CouponCode != ""),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	order = &models.Order{
		UserID:          userID,
		ShippingAddress: *req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderPending,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.carts.GetByUserID(ctx, userID, true)
		if errors.Is(err, repository.ErrCartNotFound) {
			return ErrCartEmpty
		}
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		var subtotal float64
		for _, item := range cart.Items {
			p := item.Product
			if p == nil || !p.Active {
				name := item.ProductID
				if p != nil {
					name = p.Name
				}
				return badRequest("Product %q is no longer available", name)
			}
			if p.Stock < item.Quantity {
				return badRequest("Not enough stock for %q. Available: %d", p.Name, p.Stock)
			}
			subtotal += item.Price * float64(item.Quantity)
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		order.Subtotal = models.RoundCents(subtotal)

		if req.CouponCode != "" {
			c, discount, err := s.coupons.Redeem(ctx, req.CouponCode, order.Subtotal)
			if err != nil {
				return err
			}
			order.CouponCode = c.Code
			order.Discount = discount
		}
		order.Total = models.RoundCents(order.Subtotal - order.Discount)

		for _, item := range cart.Items {
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return badRequest("Not enough stock for %q", item.Product.Name)
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		cart.Items = nil
		cart.Recalculate()
		if err := s.carts.Save(ctx, cart); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.catalog.Invalidate(ctx)
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Float64("order.total", order.Total))
	s.log.Info("order created",
		"order_id", order.ID,
		"user_id", userID,
		"items", len(order.Items),
		"total", order.Total,
		"coupon", order.CouponCode,
	)

	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns an order visible to the caller: its owner or an admin.
func (s *OrderService) Get(ctx context.Context, user *models.User, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != user.ID && !user.IsAdmin {
		return nil, ErrOrderAccess
	}
	return order, nil
}

// UpdateStatus moves an order to status. Cancelling puts the ordered units
// back in stock; a cancelled order stays cancelled.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	restocked := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, id)
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}

		if order.Status == status {
			return nil
		}
		if order.Status == models.OrderCancelled {
			return ErrOrderCancelled
		}

		if status == models.OrderCancelled {
			for _, item := range order.Items {
				err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity)
				if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
					return fmt.Errorf("restore stock: %w", err)
				}
			}
			restocked = true
		}

		if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if restocked {
		s.catalog.Invalidate(ctx)
	}
	s.log.Info("order status updated", "order_id", id, "status", status, "restocked", restocked)

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	return order, nil
}
