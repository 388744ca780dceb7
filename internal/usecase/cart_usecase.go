package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gomarketplace-cart/internal/domain"
	"gomarketplace-cart/pkg/kvstore"
	"gomarketplace-cart/pkg/logger"
)

const defaultPersistTimeout = 5 * time.Second

type CartOption func(*CartManager)

// WithCartKey overrides domain.DefaultCartKey.
func WithCartKey(key string) CartOption {
	return func(m *CartManager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithPersistTimeout bounds each individual store write.
func WithPersistTimeout(d time.Duration) CartOption {
	return func(m *CartManager) {
		if d > 0 {
			m.persistTimeout = d
		}
	}
}

// WithPersistErrorHandler receives every snapshot that could not be encoded
// or written. It runs on the background writer goroutine, never under the
// manager's lock.
func WithPersistErrorHandler(fn func(error)) CartOption {
	return func(m *CartManager) {
		m.onPersistError = fn
	}
}

// CartManager owns the in-memory cart and mirrors it into a kvstore.Store.
//
// Mutations are applied under a single lock: the next cart is computed
// from the current one, swapped in, and the encoded post-mutation snapshot
// is queued for the background writer before the lock is released. Callers
// never wait for the store, and the store is never ahead of memory.
type CartManager struct {
	store          kvstore.Store
	key            string
	persistTimeout time.Duration
	onPersistError func(error)

	mu          sync.Mutex
	cart        domain.Cart
	version     uint64
	initialized bool
	closed      bool
	writer      *cartPersister

	subs    map[int]chan domain.Cart
	nextSub int
}

func NewCartManager(store kvstore.Store, opts ...CartOption) *CartManager {
	m := &CartManager{
		store:          store,
		key:            domain.DefaultCartKey,
		persistTimeout: defaultPersistTimeout,
		cart:           domain.Cart{},
		subs:           make(map[int]chan domain.Cart),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the store key the cart is mirrored under.
func (m *CartManager) Key() string {
	return m.key
}

// Initialize hydrates the cart from the store. It must succeed before any
// other call is accepted, and runs at most once.
func (m *CartManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("initialize: %w", domain.ErrCartNotProvisioned)
	}
	if m.initialized {
		return domain.ErrAlreadyInitialized
	}

	log := logger.WithContext(ctx)
	raw, found, err := m.store.Get(ctx, m.key)
	if err != nil {
		return fmt.Errorf("load cart %q: %w", m.key, err)
	}

	cart := domain.Cart{}
	if found && strings.TrimSpace(raw) != "" {
		cart, err = domain.DecodeCart(raw)
		if err != nil {
			log.Error().Err(err).Str("key", m.key).Msg("Refusing to start with a corrupt cart record")
			return fmt.Errorf("load cart %q: %w", m.key, err)
		}
	}

	m.cart = cart
	m.initialized = true
	m.writer = newCartPersister(m.store, m.key, m.persistTimeout, m.onPersistError)

	log.Info().
		Str("key", m.key).
		Bool("found", found).
		Int("items", len(cart)).
		Msg("Cart hydrated")
	return nil
}

// Products returns a copy of the current cart.
func (m *CartManager) Products() (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("products"); err != nil {
		return nil, err
	}
	return m.cart.Clone(), nil
}

// AddToCart appends p with quantity 1. A product already in the cart is
// left as it is.
func (m *CartManager) AddToCart(ctx context.Context, p domain.Product) (domain.Cart, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, domain.ErrInvalidProduct
	}
	return m.mutate(ctx, "add_to_cart", p.ID, func(c domain.Cart) (domain.Cart, bool) {
		return c.WithProduct(p)
	})
}

// Increment raises the quantity of id by one. Unknown ids are ignored.
func (m *CartManager) Increment(ctx context.Context, id string) (domain.Cart, error) {
	return m.mutate(ctx, "increment", id, func(c domain.Cart) (domain.Cart, bool) {
		return c.Incremented(id)
	})
}

// Decrement lowers the quantity of id by one and drops the item at zero.
// Unknown ids are ignored.
func (m *CartManager) Decrement(ctx context.Context, id string) (domain.Cart, error) {
	return m.mutate(ctx, "decrement", id, func(c domain.Cart) (domain.Cart, bool) {
		return c.Decremented(id)
	})
}

func (m *CartManager) mutate(ctx context.Context, op, id string, apply func(domain.Cart) (domain.Cart, bool)) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable(op); err != nil {
		return nil, err
	}

	next, changed := apply(m.cart)
	m.cart = next
	m.version++

	// No-op mutations are persisted too.
	payload, err := domain.EncodeCart(next)
	m.writer.submit(m.version, payload, err)
	m.publish()

	logger.WithContext(ctx).Debug().
		Str("op", op).
		Str("product_id", id).
		Bool("changed", changed).
		Uint64("version", m.version).
		Int("items", len(next)).
		Msg("Cart mutated")

	return next.Clone(), nil
}

// Subscribe returns a channel that receives the cart after every mutation.
// The channel holds only the latest cart; a slow reader skips intermediate
// states. The current cart is delivered immediately.
func (m *CartManager) Subscribe() (<-chan domain.Cart, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("subscribe"); err != nil {
		return nil, nil, err
	}

	id := m.nextSub
	m.nextSub++
	ch := make(chan domain.Cart, 1)
	ch <- m.cart.Clone()
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel, nil
}

// publish must be called with m.mu held.
func (m *CartManager) publish() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- m.cart.Clone():
		default:
		}
	}
}

// Flush waits until the writer has attempted every queued snapshot and
// returns the outcome of the latest attempt.
func (m *CartManager) Flush(ctx context.Context) error {
	m.mu.Lock()
	if err := m.usable("flush"); err != nil {
		m.mu.Unlock()
		return err
	}
	writer := m.writer
	m.mu.Unlock()

	return writer.flush(ctx)
}

// Close stops accepting calls, writes any pending snapshot and stops the
// writer. The store itself is left open.
func (m *CartManager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	writer := m.writer
	m.mu.Unlock()

	if writer == nil {
		return nil
	}
	return writer.shutdown(ctx)
}

// usable must be called with m.mu held.
func (m *CartManager) usable(op string) error {
	if !m.initialized || m.closed {
		return fmt.Errorf("%s: %w", op, domain.ErrCartNotProvisioned)
	}
	return nil
}
