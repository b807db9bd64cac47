package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/query"
)

const EditEventStaleTime = 10 * time.Second

type GetEvent func(ctx context.Context, id string) (domain.Event, error)

type eventGetter interface {
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

func BuildGetEvent(provider eventGetter) GetEvent {
	return func(ctx context.Context, id string) (domain.Event, error) {
		if id == "" {
			return domain.Event{}, fmt.Errorf("%w: missing event id", domain.ErrEventNotFound)
		}

		event, err := provider.GetEvent(ctx, id)
		if err != nil {
			return domain.Event{}, fmt.Errorf("could not get event: %w", err)
		}
		return event, nil
	}
}

func EventQuery(getEvent GetEvent, id string, staleTime time.Duration) query.Options[domain.Event] {
	return query.Options[domain.Event]{
		Key: EventKey(id),
		Fetch: func(ctx context.Context) (domain.Event, error) {
			return getEvent(ctx, id)
		},
		StaleTime: staleTime,
	}
}
