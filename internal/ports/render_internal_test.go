package ports

import (
	"bytes"
	"testing"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date     string
		expected string
	}{
		{date: "2026-11-05", expected: "Nov 5, 2026"},
		{date: "2026-12-24", expected: "Dec 24, 2026"},
		{date: "next friday", expected: "next friday"},
		{date: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, formatDate(tc.date))
		})
	}
}

func TestRenderHeader(t *testing.T) {
	t.Parallel()

	w := &bytes.Buffer{}
	renderHeader(w, "Events", 0)
	require.Equal(t, "== Events ==\n", w.String())

	w.Reset()
	renderHeader(w, "Events", 2)
	require.Equal(t, "== Events == [fetching...]\n", w.String())
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "http://localhost:3000/park.jpg", imageURL("http://localhost:3000", "park.jpg"))
	require.Equal(t, "http://localhost:3000/park.jpg", imageURL("http://localhost:3000/", "/park.jpg"))
	require.Equal(t, "park.jpg", imageURL("", "park.jpg"))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"text", "json", "yaml"} {
		format, err := ParseFormat(raw)
		require.NoError(t, err)
		require.Equal(t, Format(raw), format)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestMergeInput(t *testing.T) {
	t.Parallel()

	base := domain.EventInput{
		Title:       "Music Fest",
		Description: "An evening of live music.",
		Date:        "2026-11-14",
		Time:        "19:00",
		Location:    "Main Square",
		Image:       "images/music.jpg",
	}

	merged := mergeInput(base, domain.EventInput{Title: "Jazz Fest", Time: "20:00"})
	require.Equal(t, domain.EventInput{
		Title:       "Jazz Fest",
		Description: "An evening of live music.",
		Date:        "2026-11-14",
		Time:        "20:00",
		Location:    "Main Square",
		Image:       "images/music.jpg",
	}, merged)

	require.Equal(t, base, mergeInput(base, domain.EventInput{}))
}

func TestSplitArgsBasic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		line     string
		expected []string
		hasError bool
	}{
		{name: "empty", line: "   ", expected: nil},
		{name: "plain", line: "show e1", expected: []string{"show", "e1"}},
		{name: "extra whitespace", line: "  list\t --all  ", expected: []string{"list", "--all"}},
		{
			name:     "double quotes",
			line:     `new --title "Jazz Night" --location Riverside`,
			expected: []string{"new", "--title", "Jazz Night", "--location", "Riverside"},
		},
		{name: "single quotes", line: `search 'city tour'`, expected: []string{"search", "city tour"}},
		{name: "quotes inside quotes", line: `new --title "Bob's party"`, expected: []string{"new", "--title", "Bob's party"}},
		{name: "empty quoted arg", line: `search ""`, expected: []string{"search", ""}},
		{name: "unterminated", line: `search "city`, hasError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args, err := splitArgs(tc.line)
			if tc.hasError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, args)
		})
	}
}
