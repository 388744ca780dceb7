package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gomarketplace-cart/pkg/kvstore"
	"gomarketplace-cart/pkg/logger"
)

type cartSnapshot struct {
	version uint64
	payload string
	err     error
}

// cartPersister writes cart snapshots to the store on its own goroutine.
// It keeps a single pending slot, so a newer snapshot replaces one that
// has not been written yet and the store only ever moves forward.
type cartPersister struct {
	store   kvstore.Store
	key     string
	timeout time.Duration
	onError func(error)

	mu        sync.Mutex
	pending   *cartSnapshot
	submitted uint64
	written   uint64
	lastErr   error
	progress  chan struct{}

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

func newCartPersister(store kvstore.Store, key string, timeout time.Duration, onError func(error)) *cartPersister {
	p := &cartPersister{
		store:    store,
		key:      key,
		timeout:  timeout,
		onError:  onError,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()
	return p
}

// submit queues a snapshot. A non-nil encodeErr marks a snapshot that could
// not be encoded; it is reported by the writer instead of being stored.
// submit never blocks on the store.
func (p *cartPersister) submit(version uint64, payload string, encodeErr error) {
	p.mu.Lock()
	if version <= p.submitted {
		p.mu.Unlock()
		return
	}
	p.pending = &cartSnapshot{version: version, payload: payload, err: encodeErr}
	p.submitted = version
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *cartPersister) run() {
	defer close(p.stopped)
	defer func() {
		logger.Debug().Str("key", p.key).Msg("Cart writer stopped")
	}()
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *cartPersister) drain() {
	for {
		p.mu.Lock()
		snap := p.pending
		p.pending = nil
		p.mu.Unlock()
		if snap == nil {
			return
		}
		p.write(snap)
	}
}

func (p *cartPersister) write(snap *cartSnapshot) {
	if snap.err != nil {
		err := fmt.Errorf("encode cart version %d: %w", snap.version, snap.err)
		logger.Warn().Err(err).Str("key", p.key).Msg("Cart snapshot skipped")
		p.finish(snap.version, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	err := p.store.Set(ctx, p.key, snap.payload)
	logger.StoreWrite(p.key, snap.version, time.Since(start), err)
	if err != nil {
		err = fmt.Errorf("persist cart version %d: %w", snap.version, err)
	}
	p.finish(snap.version, err)
}

func (p *cartPersister) finish(version uint64, err error) {
	p.mu.Lock()
	if version > p.written {
		p.written = version
	}
	p.lastErr = err
	close(p.progress)
	p.progress = make(chan struct{})
	p.mu.Unlock()

	if err != nil && p.onError != nil {
		p.onError(err)
	}
}

// flush waits until every submitted snapshot has been attempted and
// returns the error of the most recent attempt.
func (p *cartPersister) flush(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.written >= p.submitted {
			err := p.lastErr
			p.mu.Unlock()
			return err
		}
		ch := p.progress
		p.mu.Unlock()

		select {
		case <-ch:
		case <-p.stopped:
			p.mu.Lock()
			err := p.lastErr
			p.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// shutdown writes whatever is pending and stops the goroutine.
func (p *cartPersister) shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	select {
	case <-p.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
