package services

import (
	"context"
	"sync"
	"time"

	"storefront/models"
	"storefront/repository"
)

const testTimeout = time.Second

// tickingClock returns a strictly increasing time on every call
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestCartService(store CartStore, clock *tickingClock) *CartService {
	svc := NewCartService(store, testTimeout, nil)
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}

func newTestOrderService(orders OrderStore, carts CartClearer, clock *tickingClock) *OrderService {
	svc := NewOrderService(orders, carts, OrderConfig{
		StoreTimeout:  testTimeout,
		ClearAttempts: 3,
		ClearBackoff:  time.Millisecond,
	}, nil)
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}

// racingCartStore simulates a writer in another process that changes the
// cart between our read and our write, for the first `races` writes.
type racingCartStore struct {
	*repository.MemoryCartRepository
	mu    sync.Mutex
	races int
}

func (s *racingCartStore) Replace(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	race := s.races > 0
	if race {
		s.races--
	}
	s.mu.Unlock()

	if race {
		other, err := s.MemoryCartRepository.FindByUser(ctx, cart.UserID)
		if err != nil {
			return err
		}
		other.Items = mergeItem(other.Items, "other-device", 1)
		if err := s.MemoryCartRepository.Replace(ctx, other); err != nil {
			return err
		}
	}
	return s.MemoryCartRepository.Replace(ctx, cart)
}

// blockingCartStore never answers before the context expires
type blockingCartStore struct {
	*repository.MemoryCartRepository
}

func (s blockingCartStore) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// downCartStore fails every call as unreachable
type downCartStore struct{}

func (downCartStore) FindByUser(context.Context, string) (*models.Cart, error) {
	return nil, repository.ErrUnavailable
}
func (downCartStore) Create(context.Context, *models.Cart) error { return repository.ErrUnavailable }
func (downCartStore) Replace(context.Context, *models.Cart) error {
	return repository.ErrUnavailable
}
func (downCartStore) ClearItems(context.Context, string, time.Time) error {
	return repository.ErrUnavailable
}

// flakyClearStore fails ClearItems while failures > 0
type flakyClearStore struct {
	*repository.MemoryCartRepository
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyClearStore) ClearItems(ctx context.Context, userID string, now time.Time) error {
	s.mu.Lock()
	s.calls++
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()

	if fail {
		return repository.ErrUnavailable
	}
	return s.MemoryCartRepository.ClearItems(ctx, userID, now)
}

func (s *flakyClearStore) setFailures(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// failingOrderStore rejects every insert
type failingOrderStore struct {
	*repository.MemoryOrderRepository
}

func (failingOrderStore) Insert(context.Context, *models.Order) error {
	return repository.ErrUnavailable
}
