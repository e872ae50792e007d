package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fills a cache on miss. Concurrent misses for one key share a
// single call to load.
type Loader[K comparable, V any] struct {
	cache   Cache[K, V]
	group   singleflight.Group
	load    func(ctx context.Context, key K) (V, error)
	gen     atomic.Uint64
	timeout time.Duration
}

const defaultLoadTimeout = 10 * time.Second

func NewLoader[K comparable, V any](c Cache[K, V], load func(ctx context.Context, key K) (V, error)) *Loader[K, V] {
	return &Loader[K, V]{cache: c, load: load, timeout: defaultLoadTimeout}
}

// WithTimeout bounds each shared load.
func (l *Loader[K, V]) WithTimeout(d time.Duration) *Loader[K, V] {
	l.timeout = d
	return l
}

// Get returns the cached value for key, loading it if absent. Errors are
// not cached. The shared load keeps the values of ctx but not its
// cancellation, so one caller giving up does not fail the others; a
// cancelled caller stops waiting and returns ctx.Err().
func (l *Loader[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	gen := l.gen.Load()
	ch := l.group.DoChan(fmt.Sprintf("%d/%v", gen, key), func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		v, err := l.load(lctx, key)
		if err != nil {
			return v, err
		}
		// A result computed before Invalidate is returned but not kept.
		if l.gen.Load() == gen {
			l.cache.Set(key, v)
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate drops every cached value and detaches new callers from
// loads already in flight.
func (l *Loader[K, V]) Invalidate() {
	l.gen.Add(1)
	l.cache.Purge()
}
