package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryCartRepository keeps carts in process memory with the same
// uniqueness and versioning rules as CartRepository.
type MemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

// NewMemoryCartRepository creates an empty MemoryCartRepository
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: map[string]*models.Cart{}}
}

// FindByUser returns a copy of the user's cart or ErrNotFound
func (r *MemoryCartRepository) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cart.Clone(), nil
}

// Create stores a new cart; a second cart for the same user is ErrDuplicate
func (r *MemoryCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.UserID]; ok {
		return ErrDuplicate
	}
	cart.ID = primitive.NewObjectID()
	r.carts[cart.UserID] = cart.Clone()
	return nil
}

// Replace overwrites the cart if the stored version matches cart.Version
func (r *MemoryCartRepository) Replace(ctx context.Context, cart *models.Cart) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.UserID]
	if !ok || stored.ID != cart.ID || stored.Version != cart.Version {
		return ErrVersionConflict
	}
	cart.Version++
	r.carts[cart.UserID] = cart.Clone()
	return nil
}

// ClearItems empties the user's cart, creating it if needed
func (r *MemoryCartRepository) ClearItems(ctx context.Context, userID string, now time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		cart = models.NewCart(userID, now)
		cart.ID = primitive.NewObjectID()
		r.carts[userID] = cart
	}
	cart.Items = []models.CartItem{}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// Len reports how many carts are stored
func (r *MemoryCartRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// MemoryOrderRepository keeps orders in process memory
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

// NewMemoryOrderRepository creates an empty MemoryOrderRepository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[primitive.ObjectID]*models.Order{}}
}

// Insert stores a copy of order and sets its ID
func (r *MemoryOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = primitive.NewObjectID()
	r.orders[order.ID] = order.Clone()
	return nil
}

// FindByID returns a copy of the order or ErrNotFound
func (r *MemoryOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return order.Clone(), nil
}

// ListByUser returns the user's orders, newest first
func (r *MemoryOrderRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Order, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	out := r.filter(func(o *models.Order) bool { return o.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

// ListPendingClear returns orders not yet marked cart_cleared, oldest first
func (r *MemoryOrderRepository) ListPendingClear(ctx context.Context, limit int64) ([]models.Order, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	out := r.filter(func(o *models.Order) bool { return !o.CartCleared })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

// MarkCartCleared sets the cart_cleared marker
func (r *MemoryOrderRepository) MarkCartCleared(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[oid]
	if !ok {
		return ErrNotFound
	}
	order.CartCleared = true
	return nil
}

func (r *MemoryOrderRepository) filter(keep func(*models.Order) bool) []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, *o.Clone())
		}
	}
	return out
}

func truncate(orders []models.Order, limit int64) []models.Order {
	if limit > 0 && int64(len(orders)) > limit {
		return orders[:limit]
	}
	return orders
}
