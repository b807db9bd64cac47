package eventprovider

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/Amund211/eventlight/internal/domain"
	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/google/uuid"
)

// mockedEventsAPI is an in-memory stand-in for the events API, used in development
type mockedEventsAPI struct {
	mu     sync.Mutex
	events []domain.Event
	images []domain.Image
}

func NewMockedEventsAPI() *mockedEventsAPI {
	return &mockedEventsAPI{
		events: []domain.Event{
			{
				ID:          "e1",
				Title:       "Web Dev Networking Night",
				Description: "Meet other developers over drinks and short talks.",
				Date:        "2026-11-05",
				Time:        "18:30",
				Location:    "Innovation Lounge",
				Image:       "meeting-networking.jpg",
			},
			{
				ID:          "e2",
				Title:       "City Hiking Tour",
				Description: "A guided walk through the hills around the city.",
				Date:        "2026-11-12",
				Time:        "09:00",
				Location:    "Central Station",
				Image:       "buzzing-city.jpg",
			},
			{
				ID:          "e3",
				Title:       "Open Source Hackathon",
				Description: "Spend the weekend contributing to open source projects.",
				Date:        "2026-12-01",
				Time:        "10:00",
				Location:    "Tech Hub",
				Image:       "laptop-coffee.jpg",
			},
		},
		images: []domain.Image{
			{Path: "meeting-networking.jpg", Caption: "People networking at a meetup"},
			{Path: "buzzing-city.jpg", Caption: "A busy city street at night"},
			{Path: "laptop-coffee.jpg", Caption: "A laptop next to a cup of coffee"},
			{Path: "park.jpg", Caption: "A green park on a sunny day"},
		},
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %w", domain.ErrEventNotFound, &e.HTTPError{
		Status: http.StatusNotFound,
		Info:   map[string]any{"message": fmt.Sprintf("Could not find event with id %s", id)},
	})
}

func (m *mockedEventsAPI) indexOf(id string) int {
	return slices.IndexFunc(m.events, func(event domain.Event) bool {
		return event.ID == id
	})
}

func (m *mockedEventsAPI) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	events := make([]domain.Event, 0, len(m.events))
	for _, event := range m.events {
		if search != "" &&
			!strings.Contains(strings.ToLower(event.Title), search) &&
			!strings.Contains(strings.ToLower(event.Description), search) &&
			!strings.Contains(strings.ToLower(event.Location), search) {
			continue
		}
		events = append(events, event)
	}

	if filter.Max > 0 && len(events) > filter.Max {
		// The most recently added events
		events = events[len(events)-filter.Max:]
	}

	return events, nil
}

func (m *mockedEventsAPI) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index == -1 {
		return domain.Event{}, notFound(id)
	}
	return m.events[index], nil
}

func (m *mockedEventsAPI) CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	event := input.WithID(uuid.NewString())
	m.events = append(m.events, event)
	return event, nil
}

func (m *mockedEventsAPI) UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index == -1 {
		return domain.Event{}, notFound(id)
	}
	m.events[index] = input.WithID(id)
	return m.events[index], nil
}

func (m *mockedEventsAPI) DeleteEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index == -1 {
		return notFound(id)
	}
	m.events = slices.Delete(m.events, index, index+1)
	return nil
}

func (m *mockedEventsAPI) ListImages(ctx context.Context) ([]domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", e.ErrAborted, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.images), nil
}
