package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

const DefaultGCTime = 5 * time.Minute

var errSuperseded = fmt.Errorf("%w: superseded by a newer request", e.ErrAborted)

// FetchFunc produces the value for a key. It must honor ctx cancellation
type FetchFunc func(ctx context.Context) (any, error)

// Listener is called with the new state of an entry after every change
type Listener func(Snapshot)

type Options struct {
	// How long an entry without observers is kept around
	GCTime  time.Duration
	NowFunc func() time.Time
}

type FetchOptions struct {
	StaleTime time.Duration
	// Ignore fresh data and supersede any request in flight
	Force bool
}

type InvalidateOptions struct {
	// Refetch entries that are currently observed right away
	RefetchActive bool
}

// Snapshot is a copy of the state of an entry
type Snapshot struct {
	Key         Key
	Data        any
	HasData     bool
	Err         error
	UpdatedAt   time.Time
	StaleTime   time.Duration
	Invalidated bool
	IsFetching  bool
	Observers   int
}

// IsFresh reports whether the data is younger than staleTime and not invalidated
func (s Snapshot) IsFresh(now time.Time, staleTime time.Duration) bool {
	return s.HasData && !s.Invalidated && now.Sub(s.UpdatedAt) < staleTime
}

type inflight struct {
	generation uint64
	flightKey  string
	cancel     context.CancelCauseFunc
}

type entry struct {
	key Key

	data      any
	hasData   bool
	err       error
	updatedAt time.Time

	staleTime   time.Duration
	invalidated bool
	fetch       FetchFunc
	// Overrides the store gc time when set
	gcTime time.Duration

	// Incremented on every write and every request start
	// Results from requests with an older generation are discarded
	generation uint64
	inflight   *inflight

	observers map[uint64]Listener
	nextID    uint64
	removed   bool
}

// Store maps query keys to their last known result
//
// All entry state is guarded by mu, so invalidating several keys is atomic
// with respect to readers.
type Store struct {
	mu      sync.Mutex
	entries *ttlcache.Cache[string, *entry]
	group   singleflight.Group

	gcTime  time.Duration
	nowFunc func() time.Time

	background  sync.WaitGroup
	disposeOnce sync.Once
	disposed    bool
}

func NewStore(opts Options) *Store {
	gcTime := opts.GCTime
	if gcTime <= 0 {
		gcTime = DefaultGCTime
	}
	nowFunc := opts.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	entries := ttlcache.New[string, *entry](
		ttlcache.WithTTL[string, *entry](gcTime),
		ttlcache.WithDisableTouchOnHit[string, *entry](),
	)
	go entries.Start()

	return &Store{
		entries: entries,
		gcTime:  gcTime,
		nowFunc: nowFunc,
	}
}

// Dispose cancels all requests in flight and drops every entry
func (s *Store) Dispose() {
	s.disposeOnce.Do(func() {
		s.mu.Lock()
		s.disposed = true
		for _, ent := range s.allEntriesLocked() {
			s.cancelLocked(ent, fmt.Errorf("%w: store disposed", e.ErrAborted))
			ent.observers = nil
		}
		s.entries.DeleteAll()
		s.mu.Unlock()

		s.entries.Stop()
		s.background.Wait()
	})
}

func (s *Store) allEntriesLocked() []*entry {
	var entries []*entry
	s.entries.Range(func(item *ttlcache.Item[string, *entry]) bool {
		entries = append(entries, item.Value())
		return true
	})
	return entries
}

func (s *Store) lookupLocked(key Key) (*entry, bool) {
	item := s.entries.Get(key.String())
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *Store) getOrCreateLocked(key Key) *entry {
	if ent, ok := s.lookupLocked(key); ok {
		return ent
	}
	ent := &entry{
		key:       key,
		observers: make(map[uint64]Listener),
	}
	s.storeLocked(ent)
	return ent
}

// Reset the gc timer of the entry. Observed entries never expire
func (s *Store) storeLocked(ent *entry) {
	if s.disposed {
		return
	}
	ttl := s.gcTime
	if ent.gcTime > 0 {
		ttl = ent.gcTime
	}
	if len(ent.observers) > 0 {
		ttl = ttlcache.NoTTL
	}
	s.entries.Set(ent.key.String(), ent, ttl)
}

func (s *Store) snapshotLocked(ent *entry) Snapshot {
	return Snapshot{
		Key:         ent.key,
		Data:        ent.data,
		HasData:     ent.hasData,
		Err:         ent.err,
		UpdatedAt:   ent.updatedAt,
		StaleTime:   ent.staleTime,
		Invalidated: ent.invalidated,
		IsFetching:  ent.inflight != nil,
		Observers:   len(ent.observers),
	}
}

type notification struct {
	snapshot  Snapshot
	listeners []Listener
}

func (s *Store) notificationLocked(ent *entry) notification {
	listeners := make([]Listener, 0, len(ent.observers))
	for _, listener := range ent.observers {
		listeners = append(listeners, listener)
	}
	return notification{snapshot: s.snapshotLocked(ent), listeners: listeners}
}

// Must be called without holding mu
func notify(notifications ...notification) {
	for _, n := range notifications {
		for _, listener := range n.listeners {
			listener(n.snapshot)
		}
	}
}

func (s *Store) Get(key Key) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.lookupLocked(key)
	if !ok {
		return Snapshot{Key: key}, false
	}
	return s.snapshotLocked(ent), true
}

// IsFresh reports whether key holds data younger than staleTime
func (s *Store) IsFresh(key Key, staleTime time.Duration) bool {
	snapshot, ok := s.Get(key)
	return ok && snapshot.IsFresh(s.nowFunc(), staleTime)
}

// Set writes value to key. Last write wins.
//
// A request in flight for the key is cancelled, its result would be older than value.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	ent := s.getOrCreateLocked(key)
	s.cancelLocked(ent, errSuperseded)
	ent.generation++
	ent.data = value
	ent.hasData = true
	ent.err = nil
	ent.updatedAt = s.nowFunc()
	ent.invalidated = false
	s.storeLocked(ent)
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)
}

// Seed writes value to key unless the key already holds fresh data or has a request in flight
func (s *Store) Seed(key Key, value any, staleTime time.Duration) bool {
	s.mu.Lock()
	ent := s.getOrCreateLocked(key)
	if ent.inflight != nil || s.snapshotLocked(ent).IsFresh(s.nowFunc(), staleTime) {
		s.mu.Unlock()
		return false
	}
	ent.generation++
	ent.data = value
	ent.hasData = true
	ent.err = nil
	ent.updatedAt = s.nowFunc()
	ent.invalidated = false
	if ent.staleTime == 0 {
		ent.staleTime = staleTime
	}
	s.storeLocked(ent)
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)
	return true
}

// Restore puts a previously taken snapshot back into the store, timestamps included
func (s *Store) Restore(snapshot Snapshot) {
	s.mu.Lock()
	ent := s.getOrCreateLocked(snapshot.Key)
	s.cancelLocked(ent, errSuperseded)
	ent.generation++
	ent.data = snapshot.Data
	ent.hasData = snapshot.HasData
	ent.err = snapshot.Err
	ent.updatedAt = snapshot.UpdatedAt
	ent.invalidated = snapshot.Invalidated
	s.storeLocked(ent)
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)
}

// Remove drops the data for key. Observed entries are kept, but emptied
func (s *Store) Remove(key Key) {
	s.mu.Lock()
	ent, ok := s.lookupLocked(key)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.cancelLocked(ent, errSuperseded)
	ent.generation++
	ent.data = nil
	ent.hasData = false
	ent.err = nil
	ent.updatedAt = time.Time{}
	ent.invalidated = false
	if len(ent.observers) == 0 {
		ent.removed = true
		s.entries.Delete(key.String())
	}
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)
}

// Cancel aborts the request in flight for key, if any. Cached data is left untouched
func (s *Store) Cancel(key Key) {
	s.mu.Lock()
	ent, ok := s.lookupLocked(key)
	if !ok || ent.inflight == nil {
		s.mu.Unlock()
		return
	}
	s.cancelLocked(ent, fmt.Errorf("%w: cancelled", e.ErrAborted))
	// Make sure a late response can't be written
	ent.generation++
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)
}

func (s *Store) cancelLocked(ent *entry, cause error) {
	if ent.inflight == nil {
		return
	}
	ent.inflight.cancel(cause)
	ent.inflight = nil
}

// Invalidate marks every entry matching prefix as stale
func (s *Store) Invalidate(ctx context.Context, prefix Key, opts InvalidateOptions) int {
	return s.InvalidateMany(ctx, []Key{prefix}, opts)
}

// InvalidateMany marks every entry matching any of the prefixes as stale in one step
//
// Returns the number of entries marked.
func (s *Store) InvalidateMany(ctx context.Context, prefixes []Key, opts InvalidateOptions) int {
	s.mu.Lock()
	var notifications []notification
	var refetch []*entry
	for _, ent := range s.allEntriesLocked() {
		if !matchesAny(ent.key, prefixes) {
			continue
		}
		ent.invalidated = true
		if opts.RefetchActive && len(ent.observers) > 0 && ent.fetch != nil {
			refetch = append(refetch, ent)
		}
		notifications = append(notifications, s.notificationLocked(ent))
	}
	if !s.disposed {
		s.background.Add(len(refetch))
	} else {
		refetch = nil
	}
	s.mu.Unlock()

	metrics.invalidationCount.Add(ctx, int64(len(notifications)))
	logging.FromContext(ctx).InfoContext(ctx, "Invalidated queries", "count", len(notifications), "refetching", len(refetch))

	notify(notifications...)

	// Detach from the caller, the refetch outlives it
	refetchCtx := context.WithoutCancel(ctx)
	for _, ent := range refetch {
		go func() {
			defer s.background.Done()
			s.mu.Lock()
			fetch, staleTime := ent.fetch, ent.staleTime
			s.mu.Unlock()
			_, _ = s.Fetch(refetchCtx, ent.key, fetch, FetchOptions{StaleTime: staleTime, Force: true})
		}()
	}

	return len(notifications)
}

func matchesAny(key Key, prefixes []Key) bool {
	for _, prefix := range prefixes {
		if key.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

// Subscribe registers listener for changes to key, marking the entry as observed
//
// The returned function removes the listener.
func (s *Store) Subscribe(key Key, listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.getOrCreateLocked(key)
	id := ent.nextID
	ent.nextID++
	ent.observers[id] = listener
	s.storeLocked(ent)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(ent.observers, id)
			if !ent.removed {
				if current, ok := s.lookupLocked(ent.key); ok && current == ent {
					s.storeLocked(ent)
				}
			}
		})
	}
}

// SetGCTime sets how long key is kept once nobody observes it.
// When several views ask, the longest time wins
func (s *Store) SetGCTime(key Key, gcTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.getOrCreateLocked(key)
	if gcTime <= ent.gcTime {
		return
	}
	ent.gcTime = gcTime
	s.storeLocked(ent)
}

// Observers returns the number of listeners subscribed to key
func (s *Store) Observers(key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.lookupLocked(key)
	if !ok {
		return 0
	}
	return len(ent.observers)
}

// IsFetching returns the number of keys with a request in flight
func (s *Store) IsFetching() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, ent := range s.allEntriesLocked() {
		if ent.inflight != nil {
			count++
		}
	}
	return count
}

// PendingFetch is a request that has been started or joined, see StartFetch
type PendingFetch struct {
	data     any
	err      error
	resultCh <-chan singleflight.Result
}

// Wait blocks until the request completes or ctx is done
func (p PendingFetch) Wait(ctx context.Context) (any, error) {
	if p.resultCh == nil {
		return p.data, p.err
	}
	select {
	case result := <-p.resultCh:
		return result.Val, result.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", e.ErrAborted, context.Cause(ctx))
	}
}

// Fetch returns the value for key, calling fetch if the cached value is missing or stale
//
// Concurrent calls for the same key share one request. With opts.Force any
// request in flight is superseded. Errors other than aborts are recorded on
// the entry.
func (s *Store) Fetch(ctx context.Context, key Key, fetch FetchFunc, opts FetchOptions) (any, error) {
	return s.StartFetch(ctx, key, fetch, opts).Wait(ctx)
}

// StartFetch is Fetch without the wait. When it returns, the request is already
// counted by IsFetching and visible on the entry.
func (s *Store) StartFetch(ctx context.Context, key Key, fetch FetchFunc, opts FetchOptions) PendingFetch {
	logger := logging.FromContext(ctx).With("key", key.String())

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return PendingFetch{err: fmt.Errorf("%w: store disposed", e.ErrAborted)}
	}

	ent := s.getOrCreateLocked(key)
	ent.fetch = fetch
	ent.staleTime = opts.StaleTime

	if !opts.Force && s.snapshotLocked(ent).IsFresh(s.nowFunc(), opts.StaleTime) {
		data := ent.data
		s.mu.Unlock()
		metrics.fetchCount.Add(ctx, 1, resultAttribute("hit"))
		logger.InfoContext(ctx, "Getting query", "cache", "hit")
		return PendingFetch{data: data}
	}

	call := ent.inflight
	switch {
	case call == nil:
		metrics.fetchCount.Add(ctx, 1, resultAttribute("miss"))
		logger.InfoContext(ctx, "Getting query", "cache", "miss")
		call = s.startLocked(ctx, ent)
	case opts.Force:
		metrics.fetchCount.Add(ctx, 1, resultAttribute("forced"))
		logger.InfoContext(ctx, "Getting query", "cache", "forced")
		s.cancelLocked(ent, errSuperseded)
		call = s.startLocked(ctx, ent)
	default:
		metrics.fetchCount.Add(ctx, 1, resultAttribute("join"))
		logger.InfoContext(ctx, "Waiting for query in flight")
	}

	// The flight can't complete while we hold mu, so this always joins the current call
	resultCh := s.group.DoChan(call.flightKey, func() (any, error) {
		return nil, errSuperseded
	})
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)

	return PendingFetch{resultCh: resultCh}
}

// Refetch runs the last fetch function used for key again, superseding any request in flight
func (s *Store) Refetch(ctx context.Context, key Key) (any, error) {
	s.mu.Lock()
	ent, ok := s.lookupLocked(key)
	if !ok || ent.fetch == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("no query registered for key %s", key.String())
	}
	fetch, staleTime := ent.fetch, ent.staleTime
	s.mu.Unlock()

	return s.Fetch(ctx, key, fetch, FetchOptions{StaleTime: staleTime, Force: true})
}

func (s *Store) startLocked(ctx context.Context, ent *entry) *inflight {
	ent.generation++
	generation := ent.generation
	fetch := ent.fetch

	// The request belongs to the entry, not the caller. Keep the values (logger, spans) but not the deadline
	fetchCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))

	call := &inflight{
		generation: generation,
		flightKey:  fmt.Sprintf("%s#%d", ent.key.String(), generation),
		cancel:     cancel,
	}
	ent.inflight = call

	s.background.Add(1)
	// Start the flight before releasing mu so joiners always find it
	s.group.DoChan(call.flightKey, func() (any, error) {
		defer s.background.Done()
		defer cancel(nil)

		data, err := fetch(fetchCtx)
		if err != nil && (errors.Is(err, context.Canceled) || fetchCtx.Err() != nil) && !e.IsAborted(err) {
			err = fmt.Errorf("%w: %w", e.ErrAborted, err)
		}
		return s.complete(ent, generation, data, err)
	})

	return call
}

func (s *Store) complete(ent *entry, generation uint64, data any, err error) (any, error) {
	s.mu.Lock()
	if ent.inflight != nil && ent.inflight.generation == generation {
		ent.inflight = nil
	}

	if ent.generation != generation || ent.removed || s.disposed {
		s.mu.Unlock()
		return nil, errSuperseded
	}

	if err != nil {
		if !e.IsAborted(err) {
			ent.err = err
		}
	} else {
		ent.data = data
		ent.hasData = true
		ent.err = nil
		ent.updatedAt = s.nowFunc()
		ent.invalidated = false
	}

	// Put the entry back if it expired while the request was in flight
	if current, ok := s.lookupLocked(ent.key); !ok || current == ent {
		s.storeLocked(ent)
	}
	n := s.notificationLocked(ent)
	s.mu.Unlock()

	notify(n)

	if err != nil {
		return nil, err
	}
	return data, nil
}
