package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/models"
	"storefront/repository"

	"go.uber.org/zap"
)

// maxConflictRetries bounds how often a cart write is retried after another
// process changed the document between our read and our write.
const maxConflictRetries = 5

// MaxItemQty is the most units of one product a cart line may hold
const MaxItemQty = 10000

// CartStore is the persistence the cart service needs
type CartStore interface {
	FindByUser(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Replace(ctx context.Context, cart *models.Cart) error
	ClearItems(ctx context.Context, userID string, now time.Time) error
}

// CartService keeps exactly one cart per user and merges additions by
// product id. All mutations of a user's cart run under that user's lock and
// are written back with a version check.
type CartService struct {
	store   CartStore
	timeout time.Duration
	logger  *zap.Logger
	locks   *userLocks
	now     func() time.Time
}

// NewCartService creates a CartService. timeout bounds every store call.
func NewCartService(store CartStore, timeout time.Duration, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:   store,
		timeout: timeout,
		logger:  logger,
		locks:   newUserLocks(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetCart returns the user's cart, creating an empty one on first use
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user_id", "is required")
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	return s.getOrCreate(ctx, userID)
}

// AddItem adds qty units of productID, accumulating onto an existing line
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user_id", "is required")
	}
	if strings.TrimSpace(productID) == "" {
		return invalid("product_id", "is required")
	}
	if qty < 1 {
		return invalid("qty", "must be at least 1")
	}
	if qty > MaxItemQty {
		return invalid("qty", fmt.Sprintf("must be at most %d", MaxItemQty))
	}

	return s.mutate(ctx, userID, func(items []models.CartItem) ([]models.CartItem, bool, error) {
		if lineQty(items, productID) > MaxItemQty-qty {
			return nil, false, invalid("qty", fmt.Sprintf("a cart line may hold at most %d units", MaxItemQty))
		}
		return mergeItem(items, productID, qty), true, nil
	})
}

// RemoveItem drops the line for productID. Removing an absent product is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user_id", "is required")
	}
	if strings.TrimSpace(productID) == "" {
		return invalid("product_id", "is required")
	}

	return s.mutate(ctx, userID, func(items []models.CartItem) ([]models.CartItem, bool, error) {
		kept, changed := removeItem(items, productID)
		return kept, changed, nil
	})
}

// ClearItems empties the user's cart, creating it if absent. Safe to repeat.
func (s *CartService) ClearItems(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user_id", "is required")
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	return s.clear(ctx, userID)
}

// ClearItemsIfUnchangedSince empties the cart only if it was last written at
// or before since. It reports whether a clear was performed; a cart that does
// not exist counts as cleared.
func (s *CartService) ClearItemsIfUnchangedSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, invalid("user_id", "is required")
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.find(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, storeError("find cart", err)
	}
	if cart.UpdatedAt.After(since) {
		return false, nil
	}
	if err := s.clear(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// mutate runs a read-modify-write of the user's items. An error from change
// aborts without writing. The caller must not hold the user's lock.
func (s *CartService) mutate(ctx context.Context, userID string, change func([]models.CartItem) ([]models.CartItem, bool, error)) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		cart, err := s.getOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		items, changed, err := change(cart.Items)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		cart.Items = items
		cart.UpdatedAt = s.now()

		err = s.replace(ctx, cart)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return storeError("save cart", err)
		}
		s.logger.Debug("cart version conflict",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt))
	}

	s.logger.Warn("cart update abandoned after repeated conflicts", zap.String("user_id", userID))
	return ErrConcurrentUpdate
}

// getOrCreate must be called with the user's lock held
func (s *CartService) getOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.find(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError("find cart", err)
	}

	cart = models.NewCart(userID, s.now())
	err = s.create(ctx, cart)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, storeError("create cart", err)
	}

	// another process created it first
	cart, err = s.find(ctx, userID)
	if err != nil {
		return nil, storeError("find cart", err)
	}
	return cart, nil
}

func (s *CartService) find(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.FindByUser(ctx, userID)
}

func (s *CartService) create(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Create(ctx, cart)
}

func (s *CartService) replace(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Replace(ctx, cart)
}

func (s *CartService) clear(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.ClearItems(ctx, userID, s.now()); err != nil {
		return storeError("clear cart", err)
	}
	return nil
}

func lineQty(items []models.CartItem, productID string) int {
	for _, item := range items {
		if item.ProductID == productID {
			return item.Qty
		}
	}
	return 0
}

// mergeItem increments the first line matching productID or appends a new one
func mergeItem(items []models.CartItem, productID string, qty int) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Qty += qty
			return items
		}
	}
	return append(items, models.CartItem{ProductID: productID, Qty: qty})
}

func removeItem(items []models.CartItem, productID string) ([]models.CartItem, bool) {
	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	return kept, len(kept) != len(items)
}
