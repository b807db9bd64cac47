package app

import (
	"context"
	"fmt"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/mutation"
	"github.com/Amund211/eventlight/internal/querycache"
)

type eventCreator interface {
	CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error)
}

// NewCreateEventMutation creates an event and invalidates every event query once it exists
//
// onCreated runs after the invalidation, and only when the event was created.
func NewCreateEventMutation(
	provider eventCreator,
	store *querycache.Store,
	onCreated func(ctx context.Context, event domain.Event),
) *mutation.Mutation[domain.EventInput, domain.Event] {
	return mutation.New(mutation.Options[domain.EventInput, domain.Event]{
		Name: "create-event",
		Validate: func(input domain.EventInput) error {
			return input.Validate()
		},
		Mutate: func(ctx context.Context, input domain.EventInput) (domain.Event, error) {
			event, err := provider.CreateEvent(ctx, input)
			if err != nil {
				return domain.Event{}, fmt.Errorf("could not create event: %w", err)
			}
			return event, nil
		},
		OnSuccess: func(ctx context.Context, event domain.Event, _ domain.EventInput) {
			store.Invalidate(ctx, EventsKey(), querycache.InvalidateOptions{RefetchActive: true})
			if onCreated != nil {
				onCreated(ctx, event)
			}
		},
	})
}
