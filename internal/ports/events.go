package ports

import (
	"context"
	"fmt"

	"github.com/Amund211/eventlight/internal/app"
	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/query"
)

// EventsPage shows the recently added events and, given a term, the search results
func (v *Views) EventsPage(ctx context.Context, term string, format Format) error {
	recent := query.Mount(ctx, v.store, app.RecentEventsQuery(v.listEvents))
	defer recent.Unmount()
	search := query.Mount(ctx, v.store, app.SearchEventsQuery(v.listEvents, term, v.staleTime))
	defer search.Unmount()

	if format != FormatText {
		recentState, err := recent.Await(ctx)
		if err != nil {
			return err
		}
		searchState, err := search.Await(ctx)
		if err != nil {
			return err
		}
		if recentState.IsError {
			return recentState.Error
		}
		if searchState.IsError {
			return searchState.Error
		}
		return renderData(v.out, format, map[string][]domain.Event{
			"recent":  recentState.Data,
			"results": searchState.Data,
		})
	}

	v.header("Events")

	failed := false
	if !v.recentSection(ctx, recent) {
		failed = true
	}
	if !v.searchSection(ctx, search, term) {
		failed = true
	}
	if failed {
		return ErrViewFailed
	}
	return nil
}

// RecentEvents shows the newest few events
func (v *Views) RecentEvents(ctx context.Context, format Format) error {
	recent := query.Mount(ctx, v.store, app.RecentEventsQuery(v.listEvents))
	defer recent.Unmount()

	if format != FormatText {
		return awaitData(ctx, v, recent, format)
	}

	v.header("Events")
	if !v.recentSection(ctx, recent) {
		return ErrViewFailed
	}
	return nil
}

// AllEvents lists every event
func (v *Views) AllEvents(ctx context.Context, format Format) error {
	all := query.Mount(ctx, v.store, app.AllEventsQuery(v.listEvents, v.staleTime))
	defer all.Unmount()

	if format != FormatText {
		return awaitData(ctx, v, all, format)
	}

	v.header("All events")
	state, err := awaitQuery(ctx, v, all)
	if err != nil {
		return err
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to fetch events!")
		return ErrViewFailed
	}
	renderEventList(v.out, state.Data)
	return nil
}

// SearchEvents shows the events matching term
func (v *Views) SearchEvents(ctx context.Context, term string, format Format) error {
	search := query.Mount(ctx, v.store, app.SearchEventsQuery(v.listEvents, term, v.staleTime))
	defer search.Unmount()

	if format != FormatText {
		return awaitData(ctx, v, search, format)
	}

	v.header("Events")
	if !v.searchSection(ctx, search, term) {
		return ErrViewFailed
	}
	return nil
}

func (v *Views) recentSection(ctx context.Context, recent *query.Query[[]domain.Event]) bool {
	renderSectionTitle(v.out, "Recently added events")

	state, err := awaitQuery(ctx, v, recent)
	if err != nil {
		renderErrorBlock(v.out, "An error occurred", err, "Failed to fetch events!")
		return false
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to fetch events!")
		return false
	}
	renderEventList(v.out, state.Data)
	return true
}

func (v *Views) searchSection(ctx context.Context, search *query.Query[[]domain.Event], term string) bool {
	renderSectionTitle(v.out, "Find your next event!")

	if term == "" {
		fmt.Fprintln(v.out, "Please enter a search term to find events.")
		return true
	}

	state, err := awaitQuery(ctx, v, search)
	if err != nil {
		renderErrorBlock(v.out, "An error occurred", err, "Failed to fetch search events")
		return false
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to fetch search events")
		return false
	}
	renderEventList(v.out, state.Data)
	return true
}

// ShowEvent shows the details of one event
func (v *Views) ShowEvent(ctx context.Context, id string, format Format) error {
	details := query.Mount(ctx, v.store, app.EventQuery(v.getEvent, id, v.staleTime))
	defer details.Unmount()

	if format != FormatText {
		return awaitData(ctx, v, details, format)
	}

	v.header("Event details")
	state, err := awaitQuery(ctx, v, details)
	if err != nil {
		return err
	}
	if state.IsError {
		renderErrorBlock(v.out, "An error occurred", state.Error, "Failed to get event details!")
		return ErrViewFailed
	}
	renderEventDetails(v.out, state.Data, v.imageBaseURL)
	return nil
}

// awaitData waits for q and writes its data, or returns its error
func awaitData[T any](ctx context.Context, v *Views, q *query.Query[T], format Format) error {
	state, err := q.Await(ctx)
	if err != nil {
		return err
	}
	if state.IsError {
		return state.Error
	}
	return renderData(v.out, format, state.Data)
}
