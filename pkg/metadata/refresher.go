package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/rs/zerolog"
)

// Loader produces a fresh metadata value
type Loader[T any] func(ctx context.Context) (T, error)

// Persister keeps the last good value across restarts
type Persister interface {
	SaveMetadata(key string, value any) error
	LoadMetadata(key string, value any) (bool, error)
}

// Cache holds the last good value of one metadata source
type Cache[T any] struct {
	mu      sync.RWMutex
	value   T
	loaded  bool
	updated time.Time
}

// Get returns the cached value and whether one was ever stored
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

// Updated returns when the cached value was last replaced
func (c *Cache[T]) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Set replaces the cached value wholesale
func (c *Cache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.loaded = true
	c.updated = time.Now()
}

// Refresher reloads one metadata source on a fixed interval. A failed load
// keeps the previous value and waits for the next tick; a successful one
// replaces the cache, is persisted when a Persister is set, and is passed
// to onUpdate.
type Refresher[T any] struct {
	name      string
	load      Loader[T]
	interval  time.Duration
	onUpdate  func(T)
	persister Persister
	cache     Cache[T]
	logger    zerolog.Logger

	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRefresher creates a refresher. onUpdate may be nil.
func NewRefresher[T any](name string, load Loader[T], interval time.Duration, onUpdate func(T)) *Refresher[T] {
	return &Refresher[T]{
		name:     name,
		load:     load,
		interval: interval,
		onUpdate: onUpdate,
		logger:   log.WithComponent("metadata").With().Str("source", name).Logger(),
	}
}

// WithPersister stores every successful value in p and lets Seed read it
func (r *Refresher[T]) WithPersister(p Persister) *Refresher[T] {
	r.persister = p
	return r
}

// Name returns the source name, also used as the persistence key
func (r *Refresher[T]) Name() string {
	return r.name
}

// Value returns the last good value
func (r *Refresher[T]) Value() (T, bool) {
	return r.cache.Get()
}

// Seed loads the persisted value, if any, into the cache and hands it to
// onUpdate. It reports whether a value was found.
func (r *Refresher[T]) Seed() bool {
	if r.persister == nil {
		return false
	}

	var value T
	found, err := r.persister.LoadMetadata(r.name, &value)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to load persisted metadata")
		return false
	}
	if !found {
		return false
	}

	r.cache.Set(value)
	if r.onUpdate != nil {
		r.onUpdate(value)
	}
	r.logger.Info().Msg("Seeded metadata from last good snapshot")
	return true
}

// Refresh loads the source once. On failure it returns the previous value
// together with the error.
func (r *Refresher[T]) Refresh(ctx context.Context) (T, error) {
	value, err := r.load(ctx)
	if err != nil {
		metrics.MetadataRefreshes.WithLabelValues(r.name, "failure").Inc()
		metrics.UpdateComponent("metadata/"+r.name, false, err.Error())
		r.logger.Warn().Err(err).Msg("Metadata refresh failed, keeping previous value")

		previous, _ := r.cache.Get()
		return previous, err
	}

	r.cache.Set(value)
	metrics.MetadataRefreshes.WithLabelValues(r.name, "success").Inc()
	metrics.UpdateComponent("metadata/"+r.name, true, "")

	if r.persister != nil {
		if err := r.persister.SaveMetadata(r.name, value); err != nil {
			r.logger.Error().Err(err).Msg("Failed to persist metadata")
		}
	}
	if r.onUpdate != nil {
		r.onUpdate(value)
	}
	r.logger.Debug().Msg("Metadata refreshed")
	return value, nil
}

// Start refreshes immediately and then on every interval
func (r *Refresher[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		_, _ = r.Refresh(ctx)
		for {
			select {
			case <-ticker.C:
				_, _ = r.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels any in-flight load and waits for the loop to exit
func (r *Refresher[T]) Stop() {
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})
	r.wg.Wait()
}
