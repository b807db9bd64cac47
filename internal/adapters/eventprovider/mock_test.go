package eventprovider_test

import (
	"context"
	"testing"

	"github.com/Amund211/eventlight/internal/adapters/eventprovider"
	"github.com/Amund211/eventlight/internal/config"
	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/domaintest"
	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestMockedEventsAPI(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	api := eventprovider.NewMockedEventsAPI()

	events, err := api.ListEvents(ctx, domain.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	input := domaintest.NewEventBuilder("").WithTitle("Jazz Night").Build().Input()
	created, err := api.CreateEvent(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, input.WithID(created.ID), created)

	// The newest events come last
	recent, err := api.ListEvents(ctx, domain.EventFilter{Max: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, created, recent[1])

	found, err := api.ListEvents(ctx, domain.EventFilter{Search: "jazz"})
	require.NoError(t, err)
	require.Equal(t, []domain.Event{created}, found)

	got, err := api.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	input.Location = "Harbor Stage"
	updated, err := api.UpdateEvent(ctx, created.ID, input)
	require.NoError(t, err)
	require.Equal(t, "Harbor Stage", updated.Location)

	require.NoError(t, api.DeleteEvent(ctx, created.ID))

	_, err = api.GetEvent(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	require.Contains(t, e.UserMessage(err, "fallback"), created.ID)

	_, err = api.UpdateEvent(ctx, created.ID, input)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	require.ErrorIs(t, api.DeleteEvent(ctx, created.ID), domain.ErrEventNotFound)

	images, err := api.ListImages(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, images)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = api.ListEvents(cancelled, domain.EventFilter{})
	require.ErrorIs(t, err, e.ErrAborted)
}

func TestNewEventsAPIOrMock(t *testing.T) {
	t.Run("development without URL is mocked", func(t *testing.T) {
		t.Setenv("EVENTLIGHT_ENVIRONMENT", "development")
		t.Setenv("EVENTS_API_URL", "")

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)

		api, err := eventprovider.NewEventsAPIOrMock(conf, nil, &recordingLimiter{})
		require.NoError(t, err)

		events, err := api.ListEvents(t.Context(), domain.EventFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, events)
	})

	t.Run("configured URL is used", func(t *testing.T) {
		t.Setenv("EVENTLIGHT_ENVIRONMENT", "development")
		t.Setenv("EVENTS_API_URL", "http://localhost:3000")

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)

		api, err := eventprovider.NewEventsAPIOrMock(conf, nil, &recordingLimiter{})
		require.NoError(t, err)
		require.NotNil(t, api)
	})
}
