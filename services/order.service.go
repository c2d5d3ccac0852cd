package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/models"
	"storefront/repository"

	"go.uber.org/zap"
)

const (
	defaultOrderListLimit = 20
	maxOrderListLimit     = 100
)

// OrderStore is the persistence the order service needs
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Order, error)
	ListPendingClear(ctx context.Context, limit int64) ([]models.Order, error)
	MarkCartCleared(ctx context.Context, id string) error
}

// CartClearer empties carts on behalf of the order service
type CartClearer interface {
	ClearItems(ctx context.Context, userID string) error
	ClearItemsIfUnchangedSince(ctx context.Context, userID string, since time.Time) (bool, error)
}

// OrderConfig tunes the order service
type OrderConfig struct {
	// StoreTimeout bounds every order store call
	StoreTimeout time.Duration
	// ClearAttempts is how many times the post-order cart clear is tried
	ClearAttempts int
	// ClearBackoff is the wait before the second attempt; it grows linearly
	ClearBackoff time.Duration
}

// CreateOrderInput is a checkout request. Items and Total are taken as the
// caller's snapshot and are not recomputed.
type CreateOrderInput struct {
	UserID        string
	Items         []models.OrderItem
	Total         float64
	PaymentMethod string
	Address       models.Address
}

// OrderResult is returned by CreateOrder. When the order was stored but its
// cart could not be cleared, CartCleared is false and Warning says so.
type OrderResult struct {
	OrderID     string
	Status      models.OrderStatus
	CartCleared bool
	Warning     string
}

// OrderService turns checkout requests into immutable orders and releases the
// user's cart afterwards.
type OrderService struct {
	orders OrderStore
	carts  CartClearer
	cfg    OrderConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates an OrderService
func NewOrderService(orders OrderStore, carts CartClearer, cfg OrderConfig, logger *zap.Logger) *OrderService {
	if cfg.ClearAttempts < 1 {
		cfg.ClearAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders: orders,
		carts:  carts,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates and stores a new order, then clears the user's cart.
// If the insert fails nothing is changed. If the clear keeps failing the order
// still stands and the result carries a warning; ReconcilePendingClears
// finishes the job later.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	if err := validateOrder(in); err != nil {
		return nil, err
	}

	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	items := make([]models.OrderItem, len(in.Items))
	copy(items, in.Items)

	order := &models.Order{
		UserID:        in.UserID,
		Items:         items,
		Total:         in.Total,
		Status:        models.OrderStatusNew,
		PaymentMethod: paymentMethod,
		Address:       in.Address,
		CartCleared:   false,
		CreatedAt:     s.now(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err := s.orders.Insert(insertCtx, order)
	cancel()
	if err != nil {
		return nil, storeError("insert order", err)
	}
	orderID := order.ID.Hex()

	result := &OrderResult{OrderID: orderID, Status: order.Status}

	// the order is committed; finish the clear even if the caller goes away
	postCtx := context.WithoutCancel(ctx)
	if err := s.clearCart(postCtx, in.UserID); err != nil {
		s.logger.Warn("order created but cart not cleared",
			zap.String("order_id", orderID),
			zap.String("user_id", in.UserID),
			zap.Error(err))
		result.Warning = "order created but the cart could not be cleared; it will be cleared later"
		return result, nil
	}
	result.CartCleared = true

	if err := s.markCleared(postCtx, orderID); err != nil {
		s.logger.Warn("cart cleared but order marker not updated",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("user_id", in.UserID),
		zap.Int("items", len(items)),
		zap.Float64("total", in.Total))

	return result, nil
}

// GetOrder returns an order by id
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storeError("find order", err)
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first. limit <= 0 selects the
// default page size.
func (s *OrderService) ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user_id", "is required")
	}
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	orders, err := s.orders.ListByUser(ctx, userID, int64(limit))
	if err != nil {
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

// ReconcilePendingClears clears the carts of orders whose post-order clear
// never succeeded. A cart written after the order was placed is left alone.
// It returns how many orders were resolved.
func (s *OrderService) ReconcilePendingClears(ctx context.Context, limit int) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	pending, err := s.orders.ListPendingClear(listCtx, int64(limit))
	cancel()
	if err != nil {
		return 0, storeError("list pending orders", err)
	}

	resolved := 0
	for _, order := range pending {
		orderID := order.ID.Hex()
		cleared, err := s.carts.ClearItemsIfUnchangedSince(ctx, order.UserID, order.CreatedAt)
		if err != nil {
			s.logger.Warn("pending cart clear failed",
				zap.String("order_id", orderID),
				zap.String("user_id", order.UserID),
				zap.Error(err))
			continue
		}
		if err := s.markCleared(ctx, orderID); err != nil {
			s.logger.Warn("order marker not updated",
				zap.String("order_id", orderID),
				zap.Error(err))
			continue
		}
		s.logger.Info("pending cart clear resolved",
			zap.String("order_id", orderID),
			zap.String("user_id", order.UserID),
			zap.Bool("cleared", cleared))
		resolved++
	}
	return resolved, nil
}

func (s *OrderService) clearCart(ctx context.Context, userID string) error {
	var err error
	for attempt := 1; attempt <= s.cfg.ClearAttempts; attempt++ {
		if err = s.carts.ClearItems(ctx, userID); err == nil {
			return nil
		}
		s.logger.Debug("cart clear attempt failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == s.cfg.ClearAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(s.cfg.ClearBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("clear cart after %d attempts: %w", s.cfg.ClearAttempts, err)
}

func (s *OrderService) markCleared(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.orders.MarkCartCleared(ctx, orderID); err != nil {
		return storeError("mark order cart cleared", err)
	}
	return nil
}

func validateOrder(in CreateOrderInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return invalid("user_id", "is required")
	}
	if len(in.Items) == 0 {
		return invalid("items", "must contain at least one item")
	}
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ProductID) == "" {
			return invalid(field+".product_id", "is required")
		}
		if item.Qty < 1 {
			return invalid(field+".qty", "must be at least 1")
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return invalid(field+".price", "must be a non-negative number")
		}
	}
	if in.Total < 0 || math.IsNaN(in.Total) || math.IsInf(in.Total, 0) {
		return invalid("total", "must be a non-negative number")
	}
	if in.Address == nil {
		return invalid("address", "is required")
	}
	return nil
}
