package ports_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Amund211/eventlight/internal/adapters/eventprovider"
	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/ports"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, views *ports.Views, args ...string) error {
	t.Helper()

	cmd := ports.NewRootCommand(views, ports.CommandOptions{NowFunc: time.Now})
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(newTestContext(t))
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	t.Run("show as json", func(t *testing.T) {
		t.Parallel()

		views, out := newViews(t, eventprovider.NewMockedEventsAPI(), 0)

		require.NoError(t, runCommand(t, views, "show", "e1", "-o", "json"))

		var event domain.Event
		require.NoError(t, json.Unmarshal(out.Bytes(), &event))
		require.Equal(t, "Web Dev Networking Night", event.Title)
	})

	t.Run("events page with search", func(t *testing.T) {
		t.Parallel()

		views, out := newViews(t, eventprovider.NewMockedEventsAPI(), 0)

		require.NoError(t, runCommand(t, views, "--search", "hackathon"))
		require.Contains(t, out.String(), "Recently added events")
		require.Equal(t, 2, strings.Count(out.String(), "Open Source Hackathon"))
	})

	t.Run("list all", func(t *testing.T) {
		t.Parallel()

		views, out := newViews(t, eventprovider.NewMockedEventsAPI(), 0)

		require.NoError(t, runCommand(t, views, "list", "--all"))
		require.Contains(t, out.String(), "All events")
	})

	t.Run("new then edit", func(t *testing.T) {
		t.Parallel()

		provider := eventprovider.NewMockedEventsAPI()
		views, out := newViews(t, provider, 0)

		require.NoError(t, runCommand(t, views,
			"new",
			"--title", "Jazz Night",
			"--description", "Live jazz by the river.",
			"--date", "2026-12-24",
			"--time", "20:00",
			"--location", "Riverside",
			"--image", "park.jpg",
		))
		require.Contains(t, out.String(), "Jazz Night")

		events, err := provider.ListEvents(newTestContext(t), domain.EventFilter{Search: "jazz"})
		require.NoError(t, err)
		require.Len(t, events, 1)

		require.NoError(t, runCommand(t, views, "edit", events[0].ID, "--location", "Harbour"))
		require.Contains(t, out.String(), "where:    Harbour")
	})

	t.Run("failed views return ErrViewFailed", func(t *testing.T) {
		t.Parallel()

		views, _ := newViews(t, eventprovider.NewMockedEventsAPI(), 0)

		err := runCommand(t, views, "delete", "nope")
		require.ErrorIs(t, err, ports.ErrViewFailed)
	})

	t.Run("usage errors", func(t *testing.T) {
		t.Parallel()

		views, _ := newViews(t, eventprovider.NewMockedEventsAPI(), 0)

		require.Error(t, runCommand(t, views, "show"))
		require.Error(t, runCommand(t, views, "images", "-o", "xml"))
		require.Error(t, runCommand(t, views, "unknown"))
	})
}
