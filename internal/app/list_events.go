package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/query"
	"github.com/Amund211/eventlight/internal/querycache"
)

const (
	RecentEventsMax       = 3
	RecentEventsStaleTime = 5 * time.Second
	RecentEventsGCTime    = 30 * time.Second
)

type ListEvents func(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)

type eventLister interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}

// BuildListEvents lists events and seeds the detail entry of every listed event
//
// Seeded entries use detailStaleTime, so a detail view opened right after a
// listing is served from the cache.
func BuildListEvents(provider eventLister, store *querycache.Store, detailStaleTime time.Duration) ListEvents {
	return func(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
		events, err := provider.ListEvents(ctx, filter)
		if err != nil {
			// NOTE: eventProvider implementations handle their own error reporting
			return nil, fmt.Errorf("could not list events: %w", err)
		}

		seeded := 0
		for _, event := range events {
			if event.ID == "" {
				continue
			}
			if store.Seed(EventKey(event.ID), event, detailStaleTime) {
				seeded++
			}
		}
		logging.FromContext(ctx).DebugContext(ctx, "Listed events", "count", len(events), "seeded", seeded)

		return events, nil
	}
}

func listQuery(listEvents ListEvents, filter domain.EventFilter) func(ctx context.Context) ([]domain.Event, error) {
	return func(ctx context.Context) ([]domain.Event, error) {
		return listEvents(ctx, filter)
	}
}

// AllEventsQuery lists every event
func AllEventsQuery(listEvents ListEvents, staleTime time.Duration) query.Options[[]domain.Event] {
	filter := domain.EventFilter{}
	return query.Options[[]domain.Event]{
		Key:       ListKey(filter),
		Fetch:     listQuery(listEvents, filter),
		StaleTime: staleTime,
	}
}

// RecentEventsQuery lists the newest few events
func RecentEventsQuery(listEvents ListEvents) query.Options[[]domain.Event] {
	filter := domain.EventFilter{Max: RecentEventsMax}
	return query.Options[[]domain.Event]{
		Key:       ListKey(filter),
		Fetch:     listQuery(listEvents, filter),
		StaleTime: RecentEventsStaleTime,
		GCTime:    RecentEventsGCTime,
	}
}

// SearchEventsQuery is disabled until there is a term to search for
func SearchEventsQuery(listEvents ListEvents, term string, staleTime time.Duration) query.Options[[]domain.Event] {
	filter := domain.EventFilter{Search: term}
	return query.Options[[]domain.Event]{
		Key:       SearchKey(filter),
		Fetch:     listQuery(listEvents, filter),
		StaleTime: staleTime,
		Disabled:  term == "",
	}
}
