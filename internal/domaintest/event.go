package domaintest

import (
	"github.com/Amund211/eventlight/internal/domain"
)

type eventBuilder struct {
	event *domain.Event
}

func (eb *eventBuilder) WithTitle(title string) *eventBuilder {
	eb.event.Title = title
	return eb
}

func (eb *eventBuilder) WithLocation(location string) *eventBuilder {
	eb.event.Location = location
	return eb
}

func (eb *eventBuilder) WithDate(date string) *eventBuilder {
	eb.event.Date = date
	return eb
}

func (eb *eventBuilder) Build() domain.Event {
	return *eb.event
}

func NewEventBuilder(id string) *eventBuilder {
	event := &domain.Event{
		ID:          id,
		Title:       "Music Fest",
		Description: "An evening of live music.",
		Date:        "2026-11-14",
		Time:        "19:00",
		Location:    "Main Square",
		Image:       "images/music.jpg",
	}
	return &eventBuilder{
		event: event,
	}
}
