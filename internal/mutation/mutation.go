package mutation

import (
	"context"
	"sync"

	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/querycache"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

type Options[V, R any] struct {
	// Used in logs and metrics
	Name string
	// Rejects vars before anything is written or sent. A rejected call never settles
	Validate func(vars V) error
	Mutate   func(ctx context.Context, vars V) (R, error)

	Optimistic Optimistic[V]

	OnSuccess func(ctx context.Context, result R, vars V)
	// Not called for aborted requests
	OnError   func(ctx context.Context, err error, vars V)
	OnSettled func(ctx context.Context, result R, err error, vars V)

	// Keys invalidated once the mutation has settled, success or not
	Store         *querycache.Store
	Invalidate    func(vars V) []querycache.Key
	RefetchActive bool
}

type State[R any] struct {
	Status Status
	Data   R
	Error  error
}

func (s State[R]) IsIdle() bool    { return s.Status == StatusIdle }
func (s State[R]) IsPending() bool { return s.Status == StatusPending }
func (s State[R]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[R]) IsError() bool   { return s.Status == StatusError }

type Mutation[V, R any] struct {
	opts Options[V, R]

	mu    sync.Mutex
	state State[R]
	// Only the latest call to Mutate updates state
	latest uint64
}

func New[V, R any](opts Options[V, R]) *Mutation[V, R] {
	return &Mutation[V, R]{opts: opts}
}

func (m *Mutation[V, R]) State() State[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to idle. A call in flight will no longer update state
func (m *Mutation[V, R]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest++
	m.state = State[R]{}
}

func (m *Mutation[V, R]) setState(call uint64, state State[R]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call != m.latest {
		return
	}
	m.state = state
}

// Mutate runs the mutation for vars and returns its result
//
// The optimistic change, if any, is applied before the request is sent and
// rolled back if it fails.
func (m *Mutation[V, R]) Mutate(ctx context.Context, vars V) (R, error) {
	logger := logging.FromContext(ctx).With("mutation", m.opts.Name)

	m.mu.Lock()
	m.latest++
	call := m.latest
	m.state = State[R]{Status: StatusPending}
	m.mu.Unlock()

	if m.opts.Validate != nil {
		if err := m.opts.Validate(vars); err != nil {
			metrics.mutationCount.Add(ctx, 1, mutationAttributes(m.opts.Name, "rejected"))
			logger.InfoContext(ctx, "Mutation rejected", "error", err.Error())

			m.setState(call, State[R]{Status: StatusError, Error: err})
			if m.opts.OnError != nil {
				m.opts.OnError(ctx, err, vars)
			}
			var zero R
			return zero, err
		}
	}

	var change Change
	if m.opts.Optimistic != nil {
		change = m.opts.Optimistic.Snapshot(ctx, vars)
		change.Apply()
	}

	result, err := m.opts.Mutate(ctx, vars)
	switch {
	case err == nil:
		metrics.mutationCount.Add(ctx, 1, mutationAttributes(m.opts.Name, "success"))
		logger.InfoContext(ctx, "Mutation succeeded")

		if change != nil {
			change.Commit()
		}
		m.setState(call, State[R]{Status: StatusSuccess, Data: result})
		if m.opts.OnSuccess != nil {
			m.opts.OnSuccess(ctx, result, vars)
		}
	case e.IsAborted(err):
		metrics.mutationCount.Add(ctx, 1, mutationAttributes(m.opts.Name, "aborted"))
		logger.InfoContext(ctx, "Mutation aborted", "error", err.Error())

		if change != nil {
			change.Rollback()
		}
		m.setState(call, State[R]{})
	default:
		metrics.mutationCount.Add(ctx, 1, mutationAttributes(m.opts.Name, "error"))
		logger.WarnContext(ctx, "Mutation failed", "error", err.Error())

		if change != nil {
			change.Rollback()
		}
		m.setState(call, State[R]{Status: StatusError, Error: err})
		if m.opts.OnError != nil {
			m.opts.OnError(ctx, err, vars)
		}
	}

	if m.opts.OnSettled != nil {
		m.opts.OnSettled(ctx, result, err, vars)
	}

	if m.opts.Store != nil && m.opts.Invalidate != nil {
		keys := m.opts.Invalidate(vars)
		if len(keys) > 0 {
			m.opts.Store.InvalidateMany(ctx, keys, querycache.InvalidateOptions{RefetchActive: m.opts.RefetchActive})
		}
	}

	return result, err
}
