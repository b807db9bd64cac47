package app

import (
	"context"
	"fmt"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/mutation"
	"github.com/Amund211/eventlight/internal/querycache"
)

type UpdateEventInput struct {
	ID    string
	Input domain.EventInput
}

type eventUpdater interface {
	UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error)
}

// NewUpdateEventMutation writes the edited event to its detail entry before the
// request is sent and puts the previous value back if the request fails.
// All event queries are invalidated when the request settles.
func NewUpdateEventMutation(
	provider eventUpdater,
	store *querycache.Store,
	onUpdated func(ctx context.Context, event domain.Event),
) *mutation.Mutation[UpdateEventInput, domain.Event] {
	return mutation.New(mutation.Options[UpdateEventInput, domain.Event]{
		Name: "update-event",
		Validate: func(vars UpdateEventInput) error {
			return vars.Input.Validate()
		},
		Mutate: func(ctx context.Context, vars UpdateEventInput) (domain.Event, error) {
			event, err := provider.UpdateEvent(ctx, vars.ID, vars.Input)
			if err != nil {
				return domain.Event{}, fmt.Errorf("could not update event: %w", err)
			}
			return event, nil
		},
		Optimistic: mutation.CacheUpdate[UpdateEventInput, domain.Event]{
			Store: store,
			Key: func(vars UpdateEventInput) querycache.Key {
				return EventKey(vars.ID)
			},
			Update: func(_ domain.Event, _ bool, vars UpdateEventInput) domain.Event {
				return vars.Input.WithID(vars.ID)
			},
		},
		OnSuccess: func(ctx context.Context, event domain.Event, _ UpdateEventInput) {
			if onUpdated != nil {
				onUpdated(ctx, event)
			}
		},
		Store: store,
		Invalidate: func(UpdateEventInput) []querycache.Key {
			return []querycache.Key{EventsKey()}
		},
		RefetchActive: true,
	})
}
