package ports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
		want []string
	}{
		{name: "words", line: "show  e1", want: []string{"show", "e1"}},
		{name: "double quotes", line: `search "city tour"`, want: []string{"search", "city tour"}},
		{name: "single quotes", line: `new --title 'Jazz "live"'`, want: []string{"new", "--title", `Jazz "live"`}},
		{name: "escaped quote inside quotes", line: `new --title "It\"s on"`, want: []string{"new", "--title", `It"s on`}},
		{name: "escaped space", line: `search city\ tour`, want: []string{"search", "city tour"}},
		{name: "empty", line: "   ", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args, err := splitArgs(tc.line)
			require.NoError(t, err)
			if tc.want == nil {
				require.Empty(t, args)
				return
			}
			require.Equal(t, tc.want, args)
		})
	}

	t.Run("unterminated quote", func(t *testing.T) {
		t.Parallel()

		_, err := splitArgs(`search "hiking`)
		require.ErrorContains(t, err, "could not parse command")
	})
}
