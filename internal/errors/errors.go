package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// The request never reached the server, or no response came back
	ErrNetwork = errors.New("network error")
	// The request was cancelled, either by a superseding request or by the caller going away
	ErrAborted = errors.New("request aborted")
)

// HTTPError is returned for any non-2xx response from the events API
type HTTPError struct {
	Status int
	// Parsed JSON error payload. nil if the body was empty or not a JSON object
	Info map[string]any
}

func (e *HTTPError) Error() string {
	if message, ok := e.infoMessage(); ok {
		return fmt.Sprintf("events API returned status %d: %s", e.Status, message)
	}
	return fmt.Sprintf("events API returned status %d (%s)", e.Status, http.StatusText(e.Status))
}

func (e *HTTPError) infoMessage() (string, bool) {
	if e.Info == nil {
		return "", false
	}
	message, ok := e.Info["message"].(string)
	if !ok || message == "" {
		return "", false
	}
	return message, true
}

// Message returns the server provided message, or fallback if the server did not send one
func (e *HTTPError) Message(fallback string) string {
	if message, ok := e.infoMessage(); ok {
		return message
	}
	return fallback
}

// IsAborted reports whether err is the result of a cancelled request
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// UserMessage picks the message to show for err in an error block
//
// The message sent by the server wins over fallback
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message(fallback)
	}
	return fallback
}
