package eventprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Amund211/eventlight/internal/config"
	"github.com/Amund211/eventlight/internal/constants"
	"github.com/Amund211/eventlight/internal/domain"
	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/reporting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type eventsAPIMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupEventsAPIMetrics(meter metric.Meter) (eventsAPIMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("eventprovider/events_api/request_count")
	if err != nil {
		return eventsAPIMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	return eventsAPIMetricsCollection{
		requestCount: requestCount,
	}, nil
}

type eventsAPI struct {
	httpClient HttpClient
	limiter    RequestLimiter
	baseURL    *url.URL

	metrics eventsAPIMetricsCollection
	tracer  trace.Tracer
}

func NewEventsAPI(httpClient HttpClient, limiter RequestLimiter, baseURL string) (*eventsAPI, error) {
	const name = "eventlight/eventprovider/events_api"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupEventsAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events API URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("events API URL must be absolute: %s", baseURL)
	}

	return &eventsAPI{
		httpClient: httpClient,
		limiter:    limiter,
		baseURL:    parsed,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func NewEventsAPIOrMock(config config.Config, httpClient HttpClient, limiter RequestLimiter) (EventProvider, error) {
	if config.EventsAPIURL() != "" {
		return NewEventsAPI(httpClient, limiter, config.EventsAPIURL())
	}
	if config.IsDevelopment() {
		return NewMockedEventsAPI(), nil
	}
	return nil, fmt.Errorf("Missing events API URL in non-development environment")
}

// EndpointKeyFunc groups requests by method and route, so every event detail shares one limiter
func EndpointKeyFunc(r *http.Request) string {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// events/<id> -> events/:id, events/images stays as is
	if len(segments) >= 2 && segments[len(segments)-2] == "events" && segments[len(segments)-1] != "images" {
		segments[len(segments)-1] = ":id"
	}
	return fmt.Sprintf("%s /%s", r.Method, strings.Join(segments, "/"))
}

type apiResponse struct {
	statusCode int
	data       []byte
	header     http.Header
}

// do sends one request to the events API and reads the full response
//
// Only transport failures are returned as errors here, non-2xx statuses are
// left to the response parsers.
func (a *eventsAPI) do(ctx context.Context, method string, query url.Values, body any, path ...string) (apiResponse, error) {
	target := a.baseURL.JoinPath(path...)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			err := fmt.Errorf("failed to encode request body: %w", err)
			reporting.Report(ctx, err)
			return apiResponse{}, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return apiResponse{}, err
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	endpoint := EndpointKeyFunc(req)
	logger := logging.FromContext(ctx).With("endpoint", endpoint, "requestID", requestID)

	if err := a.limiter.Wait(req); err != nil {
		logger.WarnContext(ctx, "Did not send request due to rate limiting", "error", err.Error())
		return apiResponse{}, err
	}

	ctx, span := a.tracer.Start(ctx, "EventsAPI.http", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("request_id", requestID),
	))
	defer span.End()

	resp, err := a.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return apiResponse{}, a.transportError(ctx, endpoint, "failed to send request", err)
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, a.transportError(ctx, endpoint, "failed to read response body", err)
	}

	a.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status_code", strconv.Itoa(resp.StatusCode)),
		),
	)
	span.SetAttributes(attribute.Int("status_code", resp.StatusCode))
	logger.InfoContext(ctx, "Got events API response", "status", resp.StatusCode)

	return apiResponse{
		statusCode: resp.StatusCode,
		data:       data,
		header:     resp.Header,
	}, nil
}

// Cancelled requests are aborts, anything else is a network failure
func (a *eventsAPI) transportError(ctx context.Context, endpoint, message string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", e.ErrAborted, message, err)
	}

	a.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status_code", "network_error"),
		),
	)

	err = fmt.Errorf("%w: %s: %w", e.ErrNetwork, message, err)
	reporting.Report(ctx, err, map[string]string{"endpoint": endpoint})
	return err
}

// Client errors and temporary outages are expected, everything else gets reported
func (a *eventsAPI) reportUnexpected(ctx context.Context, err error, resp apiResponse) {
	var httpErr *e.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status < 500 || errors.Is(err, domain.ErrTemporarilyUnavailable) {
			return
		}
	}

	extra := map[string]string{
		"data":   string(resp.data),
		"status": strconv.Itoa(resp.statusCode),
	}
	for header, values := range resp.header {
		switch len(values) {
		case 0:
			extra["header_"+header] = "<empty slice>"
		case 1:
			extra["header_"+header] = values[0]
		default:
			extra["header_"+header] = fmt.Sprintf("list: %v", values)
		}
	}
	reporting.Report(ctx, err, extra)
}

func (a *eventsAPI) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.ListEvents")
	defer span.End()

	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Max > 0 {
		query.Set("max", strconv.Itoa(filter.Max))
	}

	resp, err := a.do(ctx, http.MethodGet, query, nil, "events")
	if err != nil {
		return nil, err
	}

	events, err := eventsFromListResponse(resp.statusCode, resp.data)
	if err != nil {
		a.reportUnexpected(ctx, err, resp)
		return nil, err
	}

	return events, nil
}

func (a *eventsAPI) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.GetEvent")
	defer span.End()

	ctx = reporting.AddExtrasToContext(ctx, map[string]string{"eventID": id})

	resp, err := a.do(ctx, http.MethodGet, nil, nil, "events", id)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := eventFromGetResponse(resp.statusCode, resp.data)
	if err != nil {
		a.reportUnexpected(ctx, err, resp)
		return domain.Event{}, err
	}

	return event, nil
}

func (a *eventsAPI) CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error) {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.CreateEvent")
	defer span.End()

	resp, err := a.do(ctx, http.MethodPost, nil, eventRequest{Event: input}, "events")
	if err != nil {
		return domain.Event{}, err
	}

	event, err := eventFromCreateResponse(resp.statusCode, resp.data)
	if err != nil {
		a.reportUnexpected(ctx, err, resp)
		return domain.Event{}, err
	}

	return event, nil
}

func (a *eventsAPI) UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error) {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.UpdateEvent")
	defer span.End()

	ctx = reporting.AddExtrasToContext(ctx, map[string]string{"eventID": id})

	resp, err := a.do(ctx, http.MethodPut, nil, eventRequest{Event: input}, "events", id)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := eventFromUpdateResponse(resp.statusCode, resp.data, id, input)
	if err != nil {
		a.reportUnexpected(ctx, err, resp)
		return domain.Event{}, err
	}

	return event, nil
}

func (a *eventsAPI) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.DeleteEvent")
	defer span.End()

	ctx = reporting.AddExtrasToContext(ctx, map[string]string{"eventID": id})

	resp, err := a.do(ctx, http.MethodDelete, nil, nil, "events", id)
	if err != nil {
		return err
	}

	if err := checkDeleteResponse(resp.statusCode, resp.data); err != nil {
		a.reportUnexpected(ctx, err, resp)
		return err
	}

	return nil
}

func (a *eventsAPI) ListImages(ctx context.Context) ([]domain.Image, error) {
	ctx, span := a.tracer.Start(ctx, "EventsAPI.ListImages")
	defer span.End()

	resp, err := a.do(ctx, http.MethodGet, nil, nil, "events", "images")
	if err != nil {
		return nil, err
	}

	images, err := imagesFromResponse(resp.statusCode, resp.data)
	if err != nil {
		a.reportUnexpected(ctx, err, resp)
		return nil, err
	}

	return images, nil
}
