package logging

import (
	"log/slog"
	"net/http"
	"time"
)

type loggingTransport struct {
	next    http.RoundTripper
	nowFunc func() time.Time
}

// NewLoggingTransport logs every outgoing request with the logger from its context
func NewLoggingTransport(next http.RoundTripper, nowFunc func() time.Time) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, nowFunc: nowFunc}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	requestID := req.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = "<missing>"
	}

	logger := FromContext(ctx).With(
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("requestID", requestID),
	)

	start := t.nowFunc()
	resp, err := t.next.RoundTrip(req)
	duration := t.nowFunc().Sub(start)

	if err != nil {
		logger.WarnContext(ctx, "Request failed", slog.Duration("duration", duration), slog.String("error", err.Error()))
		return nil, err
	}

	logger.InfoContext(ctx, "Request finished", slog.Duration("duration", duration), slog.Int("status", resp.StatusCode))
	return resp, nil
}
