package errors_test

import (
	"errors"
	"fmt"
	"testing"

	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("with message", func(t *testing.T) {
		t.Parallel()

		err := &e.HTTPError{Status: 422, Info: map[string]any{"message": "Invalid data provided."}}
		require.Equal(t, "events API returned status 422: Invalid data provided.", err.Error())
		require.Equal(t, "Invalid data provided.", err.Message("fallback"))
	})

	t.Run("without info", func(t *testing.T) {
		t.Parallel()

		err := &e.HTTPError{Status: 500}
		require.Equal(t, "events API returned status 500 (Internal Server Error)", err.Error())
		require.Equal(t, "fallback", err.Message("fallback"))
	})

	t.Run("non-string message", func(t *testing.T) {
		t.Parallel()

		err := &e.HTTPError{Status: 400, Info: map[string]any{"message": 12}}
		require.Equal(t, "fallback", err.Message("fallback"))
	})

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()

		err := &e.HTTPError{Status: 400, Info: map[string]any{"message": ""}}
		require.Equal(t, "fallback", err.Message("fallback"))
	})
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("failed to get event: %w", &e.HTTPError{Status: 404, Info: map[string]any{"message": "Event not found"}})
	require.Equal(t, "Event not found", e.UserMessage(wrapped, "Failed to get event details!"))

	require.Equal(t, "Failed to get event details!", e.UserMessage(errors.New("boom"), "Failed to get event details!"))
	require.Equal(t, "Try again later!", e.UserMessage(fmt.Errorf("%w: dial tcp", e.ErrNetwork), "Try again later!"))
}

func TestIsAborted(t *testing.T) {
	t.Parallel()

	require.True(t, e.IsAborted(fmt.Errorf("%w: context canceled", e.ErrAborted)))
	require.False(t, e.IsAborted(e.ErrNetwork))
	require.False(t, e.IsAborted(nil))
}
