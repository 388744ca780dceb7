package usecase

import (
	"context"
	"errors"
	"fmt"

	"gomarketplace-cart/pkg/kvstore"
)

// ProvideCart is the bounded scope a CartManager lives in: it hydrates a
// manager from store, hands it to fn, and closes it when fn returns. The
// manager rejects every call made after the scope ends.
func ProvideCart(ctx context.Context, store kvstore.Store, fn func(*CartManager) error, opts ...CartOption) (err error) {
	m := NewCartManager(store, opts...)
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("provide cart: %w", err)
	}
	defer func() {
		// Close on a fresh context so a cancelled ctx still lets the last
		// snapshot reach the store.
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.persistTimeout)
		defer cancel()
		if cerr := m.Close(closeCtx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close cart: %w", cerr))
		}
	}()
	return fn(m)
}
