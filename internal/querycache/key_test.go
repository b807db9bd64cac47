package querycache_test

import (
	"testing"

	"github.com/Amund211/eventlight/internal/querycache"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		key  querycache.Key
		want string
	}{
		{
			name: "resource only",
			key:  querycache.NewKey("events"),
			want: "events",
		},
		{
			name: "with id",
			key:  querycache.NewKey("events").WithID("1"),
			want: "events/1",
		},
		{
			name: "params are sorted",
			key:  querycache.NewKey("events").WithParam("search", "music").WithParam("max", "3"),
			want: "events?max=3&search=music",
		},
		{
			name: "empty param is kept",
			key:  querycache.NewKey("events").WithParam("search", ""),
			want: "events?search=",
		},
		{
			name: "escaping",
			key:  querycache.NewKey("events").WithID("a/b").WithParam("search", "rock & roll"),
			want: "events/a%2Fb?search=rock+%26+roll",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.key.String())
		})
	}
}

func TestKeyWithParamDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := querycache.NewKey("events").WithParam("search", "music")
	derived := base.WithParam("search", "art")

	require.Equal(t, "events?search=music", base.String())
	require.Equal(t, "events?search=art", derived.String())
}

func TestKeyHasPrefix(t *testing.T) {
	t.Parallel()

	events := querycache.NewKey("events")
	search := events.WithParam("search", "music")
	searchMax := search.WithParam("max", "3")
	detail := events.WithID("1")
	images := querycache.NewKey("event-images")

	require.True(t, events.HasPrefix(events))
	require.True(t, search.HasPrefix(events))
	require.True(t, detail.HasPrefix(events))
	require.True(t, searchMax.HasPrefix(search))

	require.False(t, events.HasPrefix(search))
	require.False(t, search.HasPrefix(searchMax))
	require.False(t, detail.HasPrefix(events.WithID("2")))
	require.False(t, images.HasPrefix(events))
	require.False(t, search.HasPrefix(events.WithParam("search", "art")))
}
