package eventprovider

import (
	"testing"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/domaintest"
	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		statusCode  int
		response    []byte
		domainErr   error
		wantInfo    map[string]any
		wantMessage string
	}{
		{
			name:        "not found with message",
			statusCode:  404,
			response:    []byte(`{"message": "Could not find event with id e9"}`),
			domainErr:   domain.ErrEventNotFound,
			wantInfo:    map[string]any{"message": "Could not find event with id e9"},
			wantMessage: "Could not find event with id e9",
		},
		{
			name:        "too many requests without body",
			statusCode:  429,
			response:    []byte(``),
			domainErr:   domain.ErrTemporarilyUnavailable,
			wantMessage: "fallback",
		},
		{
			name:        "service unavailable",
			statusCode:  503,
			response:    []byte(`<html>Service Unavailable</html>`),
			domainErr:   domain.ErrTemporarilyUnavailable,
			wantMessage: "fallback",
		},
		{
			name:        "gateway timeout",
			statusCode:  504,
			response:    []byte(``),
			domainErr:   domain.ErrTemporarilyUnavailable,
			wantMessage: "fallback",
		},
		{
			name:        "unprocessable entity",
			statusCode:  422,
			response:    []byte(`{"message": "Invalid data provided.", "errors": {"title": "Invalid title."}}`),
			domainErr:   domain.ErrInvalidEvent,
			wantInfo:    map[string]any{"message": "Invalid data provided.", "errors": map[string]any{"title": "Invalid title."}},
			wantMessage: "Invalid data provided.",
		},
		{
			name:        "internal server error",
			statusCode:  500,
			response:    []byte(`{"error": "boom"}`),
			wantInfo:    map[string]any{"error": "boom"},
			wantMessage: "fallback",
		},
		{
			name:        "json array body",
			statusCode:  400,
			response:    []byte(`["not", "an", "object"]`),
			wantMessage: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errorFromResponse(tt.statusCode, tt.response)
			require.Error(t, err)

			var httpErr *e.HTTPError
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, tt.statusCode, httpErr.Status)
			require.Equal(t, tt.wantInfo, httpErr.Info)
			require.Equal(t, tt.wantMessage, e.UserMessage(err, "fallback"))

			if tt.domainErr != nil {
				require.ErrorIs(t, err, tt.domainErr)
			}
		})
	}
}

func TestEventsFromListResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		response   []byte
		expected   []domain.Event
		wantErr    bool
	}{
		{
			name:       "events",
			statusCode: 200,
			response: []byte(`{
  "events": [
    {"id": "e1", "title": "Music Fest", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"},
    {"id": "e2", "title": "Jazz Night", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"}
  ]
}`),
			expected: []domain.Event{
				domaintest.NewEventBuilder("e1").Build(),
				domaintest.NewEventBuilder("e2").WithTitle("Jazz Night").Build(),
			},
		},
		{
			name:       "no events",
			statusCode: 200,
			response:   []byte(`{"events": []}`),
			expected:   []domain.Event{},
		},
		{
			name:       "missing events",
			statusCode: 200,
			response:   []byte(`{}`),
			wantErr:    true,
		},
		{
			name:       "invalid json",
			statusCode: 200,
			response:   []byte(`{"events": [`),
			wantErr:    true,
		},
		{
			name:       "error status",
			statusCode: 500,
			response:   []byte(`{"message": "Fetching events failed."}`),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			events, err := eventsFromListResponse(tt.statusCode, tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, events)
		})
	}
}

func TestEventFromGetResponse(t *testing.T) {
	t.Parallel()

	event, err := eventFromGetResponse(200, []byte(`{"event": {"id": "e1", "title": "Music Fest", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"}}`))
	require.NoError(t, err)
	require.Equal(t, domaintest.NewEventBuilder("e1").Build(), event)

	_, err = eventFromGetResponse(200, []byte(`{"events": []}`))
	require.Error(t, err)

	_, err = eventFromGetResponse(404, []byte(`{"message": "Could not find event for id e9"}`))
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventFromCreateResponse(t *testing.T) {
	t.Parallel()

	created := domaintest.NewEventBuilder("e3").WithTitle("Jazz Night").Build()

	tests := []struct {
		name       string
		statusCode int
		response   []byte
		expected   domain.Event
		wantErr    bool
	}{
		{
			name:       "single event",
			statusCode: 201,
			response:   []byte(`{"event": {"id": "e3", "title": "Jazz Night", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"}}`),
			expected:   created,
		},
		{
			name:       "full list with the new event last",
			statusCode: 200,
			response: []byte(`{"events": [
  {"id": "e1", "title": "Music Fest", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"},
  {"id": "e3", "title": "Jazz Night", "description": "An evening of live music.", "date": "2026-11-14", "time": "19:00", "location": "Main Square", "image": "images/music.jpg"}
]}`),
			expected: created,
		},
		{
			name:       "empty list",
			statusCode: 200,
			response:   []byte(`{"events": []}`),
			wantErr:    true,
		},
		{
			name:       "plain ack",
			statusCode: 200,
			response:   []byte(`{"message": "Event created"}`),
			wantErr:    true,
		},
		{
			name:       "validation error",
			statusCode: 422,
			response:   []byte(`{"message": "Invalid data provided."}`),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := eventFromCreateResponse(tt.statusCode, tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, event)
		})
	}
}

func TestEventFromUpdateResponse(t *testing.T) {
	t.Parallel()

	input := domaintest.NewEventBuilder("").WithTitle("Jazz Night").Build().Input()

	t.Run("updated event", func(t *testing.T) {
		t.Parallel()

		event, err := eventFromUpdateResponse(200, []byte(`{"event": {"id": "e1", "title": "Server Title"}}`), "e1", input)
		require.NoError(t, err)
		require.Equal(t, domain.Event{ID: "e1", Title: "Server Title"}, event)
	})

	for _, body := range []string{``, `{"message": "Event updated"}`, `OK`} {
		t.Run("ack "+body, func(t *testing.T) {
			t.Parallel()

			event, err := eventFromUpdateResponse(200, []byte(body), "e1", input)
			require.NoError(t, err)
			require.Equal(t, input.WithID("e1"), event)
		})
	}

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		_, err := eventFromUpdateResponse(404, nil, "e1", input)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

func TestCheckDeleteResponse(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkDeleteResponse(200, []byte(`{"message": "Event deleted"}`)))
	require.NoError(t, checkDeleteResponse(204, nil))
	require.ErrorIs(t, checkDeleteResponse(404, nil), domain.ErrEventNotFound)
}

func TestImagesFromResponse(t *testing.T) {
	t.Parallel()

	images, err := imagesFromResponse(200, []byte(`{"images": [{"path": "park.jpg", "caption": "A green park"}]}`))
	require.NoError(t, err)
	require.Equal(t, []domain.Image{{Path: "park.jpg", Caption: "A green park"}}, images)

	_, err = imagesFromResponse(200, []byte(`{}`))
	require.Error(t, err)

	_, err = imagesFromResponse(503, nil)
	require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
}
