package app

import (
	"context"
	"fmt"

	"github.com/Amund211/eventlight/internal/mutation"
	"github.com/Amund211/eventlight/internal/querycache"
)

type eventDeleter interface {
	DeleteEvent(ctx context.Context, id string) error
}

// NewDeleteEventMutation deletes an event by id
//
// On success the detail entry is dropped and the remaining event queries are
// marked stale without being refetched, so nothing asks for the deleted event again.
func NewDeleteEventMutation(
	provider eventDeleter,
	store *querycache.Store,
	onDeleted func(ctx context.Context, id string),
) *mutation.Mutation[string, struct{}] {
	return mutation.New(mutation.Options[string, struct{}]{
		Name: "delete-event",
		Mutate: func(ctx context.Context, id string) (struct{}, error) {
			err := provider.DeleteEvent(ctx, id)
			if err != nil {
				return struct{}{}, fmt.Errorf("could not delete event: %w", err)
			}
			return struct{}{}, nil
		},
		OnSuccess: func(ctx context.Context, _ struct{}, id string) {
			store.Remove(EventKey(id))
			store.Invalidate(ctx, EventsKey(), querycache.InvalidateOptions{RefetchActive: false})
			if onDeleted != nil {
				onDeleted(ctx, id)
			}
		},
	})
}
