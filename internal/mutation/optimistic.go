package mutation

import (
	"context"

	"github.com/Amund211/eventlight/internal/querycache"
)

// Change is a speculative cache write made before the server has confirmed it
type Change interface {
	Apply()
	// Commit keeps the speculative value
	Commit()
	// Rollback puts the cache back the way it was before Apply
	Rollback()
}

type Optimistic[V any] interface {
	// Snapshot captures the current value of the affected entries and prepares the change for vars
	Snapshot(ctx context.Context, vars V) Change
}

// CacheUpdate optimistically writes the result of Update to a single key
type CacheUpdate[V, T any] struct {
	Store *querycache.Store
	Key   func(vars V) querycache.Key
	// prev is the zero value when had is false
	Update func(prev T, had bool, vars V) T
}

func (u CacheUpdate[V, T]) Snapshot(ctx context.Context, vars V) Change {
	key := u.Key(vars)

	// A response for a request started before the write would overwrite it
	u.Store.Cancel(key)

	before, existed := u.Store.Get(key)
	prev, ok := before.Data.(T)
	had := before.HasData && ok

	return &cacheChange[T]{
		store:   u.Store,
		key:     key,
		before:  before,
		existed: existed,
		next:    u.Update(prev, had, vars),
	}
}

type cacheChange[T any] struct {
	store   *querycache.Store
	key     querycache.Key
	before  querycache.Snapshot
	existed bool
	next    T
}

func (c *cacheChange[T]) Apply() {
	c.store.Set(c.key, c.next)
}

func (c *cacheChange[T]) Commit() {}

func (c *cacheChange[T]) Rollback() {
	if !c.existed {
		c.store.Remove(c.key)
		return
	}
	c.store.Restore(c.before)
}
