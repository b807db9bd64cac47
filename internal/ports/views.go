package ports

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Amund211/eventlight/internal/app"
	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/mutation"
	"github.com/Amund211/eventlight/internal/query"
	"github.com/Amund211/eventlight/internal/querycache"
)

// ErrViewFailed is returned by a view after it has rendered an error block
var ErrViewFailed = errors.New("view failed")

// EventProvider is everything the views need from the events API
type EventProvider interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListImages(ctx context.Context) ([]domain.Image, error)
}

type ViewsOptions struct {
	Store    *querycache.Store
	Provider EventProvider

	// Used by views that don't pick their own
	StaleTime    time.Duration
	ImageBaseURL string
	Out          io.Writer
}

// Views renders the event pages from query and mutation state
//
// One Views is shared by every command of a shell session, so the pages share one cache.
type Views struct {
	store        *querycache.Store
	listEvents   app.ListEvents
	getEvent     app.GetEvent
	listImages   app.ListImages
	staleTime    time.Duration
	imageBaseURL string
	out          io.Writer

	createEvent *mutation.Mutation[domain.EventInput, domain.Event]
	updateEvent *mutation.Mutation[app.UpdateEventInput, domain.Event]
	deleteEvent *mutation.Mutation[string, struct{}]

	mu sync.Mutex
	// The last create that failed, so it can be retried without typing it again
	draft *domain.EventInput
}

func NewViews(opts ViewsOptions) *Views {
	v := &Views{
		store:        opts.Store,
		listEvents:   app.BuildListEvents(opts.Provider, opts.Store, opts.StaleTime),
		getEvent:     app.BuildGetEvent(opts.Provider),
		listImages:   app.BuildListImages(opts.Provider),
		staleTime:    opts.StaleTime,
		imageBaseURL: opts.ImageBaseURL,
		out:          opts.Out,
	}

	v.createEvent = app.NewCreateEventMutation(opts.Provider, opts.Store, func(ctx context.Context, event domain.Event) {
		v.clearDraft()
		v.navigate(ctx, func(ctx context.Context) error {
			return v.AllEvents(ctx, FormatText)
		})
	})
	v.updateEvent = app.NewUpdateEventMutation(opts.Provider, opts.Store, func(ctx context.Context, event domain.Event) {
		v.navigate(ctx, func(ctx context.Context) error {
			return v.ShowEvent(ctx, event.ID, FormatText)
		})
	})
	v.deleteEvent = app.NewDeleteEventMutation(opts.Provider, opts.Store, func(ctx context.Context, id string) {
		v.navigate(ctx, func(ctx context.Context) error {
			return v.AllEvents(ctx, FormatText)
		})
	})

	return v
}

// navigate renders the page a successful mutation leads to
func (v *Views) navigate(ctx context.Context, page func(ctx context.Context) error) {
	// The page renders its own errors
	_ = page(ctx)
}

func (v *Views) header(title string) {
	renderHeader(v.out, title, v.store.IsFetching())
}

// awaitQuery waits for q to settle, printing a loading line if nothing is cached yet
func awaitQuery[T any](ctx context.Context, v *Views, q *query.Query[T]) (query.State[T], error) {
	state := q.State()
	if state.IsLoading {
		io.WriteString(v.out, "Loading...\n")
	}
	return q.Await(ctx)
}

func (v *Views) setDraft(input domain.EventInput) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = &input
}

func (v *Views) clearDraft() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = nil
}

// withDraft fills the fields missing from input from the last failed create
func (v *Views) withDraft(input domain.EventInput) domain.EventInput {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.draft == nil {
		return input
	}
	return mergeInput(*v.draft, input)
}

// mergeInput replaces the fields of base that are set in changes
func mergeInput(base, changes domain.EventInput) domain.EventInput {
	if changes.Title != "" {
		base.Title = changes.Title
	}
	if changes.Description != "" {
		base.Description = changes.Description
	}
	if changes.Date != "" {
		base.Date = changes.Date
	}
	if changes.Time != "" {
		base.Time = changes.Time
	}
	if changes.Location != "" {
		base.Location = changes.Location
	}
	if changes.Image != "" {
		base.Image = changes.Image
	}
	return base
}
