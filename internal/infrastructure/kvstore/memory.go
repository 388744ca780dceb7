package kvstore

import (
	"context"

	"gomarketplace-cart/pkg/kvstore"

	gocache "github.com/patrickmn/go-cache"
)

type memoryStore struct {
	store *gocache.Cache
}

// NewMemoryStore creates a process-local store. Entries never expire, so
// the cart record lives as long as the process does.
func NewMemoryStore() kvstore.Store {
	return &memoryStore{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := m.store.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return s, true, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *memoryStore) Close() error {
	m.store.Flush()
	return nil
}
