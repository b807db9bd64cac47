package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/querycache"
)

type Options[T any] struct {
	Key       querycache.Key
	Fetch     func(ctx context.Context) (T, error)
	StaleTime time.Duration
	// How long the entry outlives its last observer. Zero uses the store default
	GCTime time.Duration
	// A disabled query never fetches on its own, but still reads the cache
	Disabled bool
}

type State[T any] struct {
	Data    T
	HasData bool

	// Fetching with nothing cached yet
	IsLoading bool
	// Nothing cached yet, fetching or not
	IsPending  bool
	IsFetching bool
	IsError    bool
	Error      error
	IsStale    bool
}

// Query binds one view to one key in the store
type Query[T any] struct {
	store *querycache.Store
	ctx   context.Context

	mu   sync.Mutex
	opts Options[T]

	unsubscribe func()
	// Parent of the waits on the current key, cancelled when the query moves on.
	// The requests themselves belong to the store
	keyCtx    context.Context
	cancelKey context.CancelFunc
	// Fetches started by this query that have not returned yet
	pending   int
	unmounted bool

	// Store listeners only take changedMu, never mu
	changedMu sync.Mutex
	// Closed and replaced whenever the state may have changed
	changed chan struct{}
}

// Mount subscribes to opts.Key and fetches it if it is missing or stale
//
// ctx is used for logging and as the parent of background fetches.
// Call Unmount when the view goes away.
func Mount[T any](ctx context.Context, store *querycache.Store, opts Options[T]) *Query[T] {
	q := &Query[T]{
		store:   store,
		ctx:     ctx,
		changed: make(chan struct{}),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.opts = opts
	q.subscribeLocked()
	q.fetchIfNeededLocked()

	return q
}

func (q *Query[T]) logger() *slog.Logger {
	return logging.FromContext(q.ctx).With("key", q.opts.Key.String())
}

func (q *Query[T]) subscribeLocked() {
	q.keyCtx, q.cancelKey = context.WithCancel(q.ctx)
	if q.opts.GCTime > 0 {
		q.store.SetGCTime(q.opts.Key, q.opts.GCTime)
	}
	q.unsubscribe = q.store.Subscribe(q.opts.Key, func(querycache.Snapshot) {
		q.broadcast()
	})
}

// Drop the subscription to the current key, cancelling its request if nobody else is watching
func (q *Query[T]) releaseLocked() {
	key := q.opts.Key
	q.cancelKey()
	q.unsubscribe()
	if q.store.Observers(key) == 0 {
		q.store.Cancel(key)
	}
	q.broadcast()
}

func (q *Query[T]) broadcast() {
	q.changedMu.Lock()
	defer q.changedMu.Unlock()
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *Query[T]) changedChan() <-chan struct{} {
	q.changedMu.Lock()
	defer q.changedMu.Unlock()
	return q.changed
}

func (q *Query[T]) fetchFunc() querycache.FetchFunc {
	fetch := q.opts.Fetch
	return func(ctx context.Context) (any, error) {
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

func (q *Query[T]) fetchIfNeededLocked() {
	if q.opts.Disabled || q.opts.Fetch == nil {
		return
	}
	if q.store.IsFresh(q.opts.Key, q.opts.StaleTime) {
		return
	}
	q.startLocked(false)
}

func (q *Query[T]) startLocked(force bool) {
	key := q.opts.Key
	fetch := q.fetchFunc()
	fetchOpts := querycache.FetchOptions{StaleTime: q.opts.StaleTime, Force: force}

	keyCtx := q.keyCtx

	q.pending++
	// Registered with the store before Mount returns, so the store counts it right away
	pending := q.store.StartFetch(keyCtx, key, fetch, fetchOpts)
	q.broadcast()

	go func() {
		_, err := pending.Wait(keyCtx)
		if err != nil && !e.IsAborted(err) {
			logging.FromContext(q.ctx).WarnContext(q.ctx, "Query failed", "key", key.String(), "error", err.Error())
		}

		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
		q.broadcast()
	}()
}

// State derives the view state from the store entry
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stateLocked()
}

func (q *Query[T]) stateLocked() State[T] {
	snapshot, _ := q.store.Get(q.opts.Key)

	var state State[T]
	if snapshot.HasData {
		data, ok := snapshot.Data.(T)
		if ok {
			state.Data = data
			state.HasData = true
		}
	}

	// Only requests this query is waiting for count, a request for another view's key does not
	state.IsFetching = q.pending > 0 || (snapshot.IsFetching && !q.opts.Disabled)
	state.IsPending = !state.HasData
	state.IsLoading = state.IsFetching && !state.HasData

	if snapshot.Err != nil && !e.IsAborted(snapshot.Err) {
		state.IsError = true
		state.Error = snapshot.Err
	}

	state.IsStale = !q.store.IsFresh(q.opts.Key, q.opts.StaleTime)

	return state
}

// SetOptions rebinds the query. A key change releases the old key and fetches the new one
func (q *Query[T]) SetOptions(opts Options[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unmounted {
		return
	}

	if !opts.Key.Equal(q.opts.Key) {
		q.logger().InfoContext(q.ctx, "Switching query key", "newKey", opts.Key.String())
		q.releaseLocked()
		q.opts = opts
		q.subscribeLocked()
	} else {
		q.opts = opts
	}

	q.fetchIfNeededLocked()
}

// Refetch fetches the key again, superseding any request in flight
func (q *Query[T]) Refetch() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unmounted || q.opts.Fetch == nil {
		return
	}
	q.startLocked(true)
}

// Unmount releases the key. The query must not be used afterwards
func (q *Query[T]) Unmount() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unmounted {
		return
	}
	q.unmounted = true
	q.releaseLocked()
}

// Await blocks until the query is no longer fetching and returns the resulting state
func (q *Query[T]) Await(ctx context.Context) (State[T], error) {
	for {
		// Take the channel first so a change between the two reads is not missed
		changed := q.changedChan()
		state := q.State()

		if !state.IsFetching {
			return state, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return state, fmt.Errorf("%w: %w", e.ErrAborted, context.Cause(ctx))
		}
	}
}
