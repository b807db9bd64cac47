package eventprovider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Amund211/eventlight/internal/domain"
	e "github.com/Amund211/eventlight/internal/errors"
)

type eventsResponse struct {
	Events *[]domain.Event `json:"events"`
}

type eventResponse struct {
	Event *domain.Event `json:"event"`
}

type imagesResponse struct {
	Images *[]domain.Image `json:"images"`
}

// The payload the events API expects for create and update
type eventRequest struct {
	Event domain.EventInput `json:"event"`
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// errorFromResponse builds the error for a non-2xx response
//
// The status and the parsed error payload are always available through
// *errors.HTTPError. Statuses with a domain meaning are also tagged with the
// matching domain error.
func errorFromResponse(statusCode int, data []byte) error {
	var info map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &info); err != nil {
			info = nil
		}
	}

	httpErr := &e.HTTPError{Status: statusCode, Info: info}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrEventNotFound, httpErr)
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", domain.ErrTemporarilyUnavailable, httpErr)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", domain.ErrInvalidEvent, httpErr)
	}
	return httpErr
}

func eventsFromListResponse(statusCode int, data []byte) ([]domain.Event, error) {
	if !isSuccess(statusCode) {
		return nil, errorFromResponse(statusCode, data)
	}

	var response eventsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}
	if response.Events == nil {
		return nil, fmt.Errorf("events response is missing events")
	}

	return *response.Events, nil
}

func eventFromGetResponse(statusCode int, data []byte) (domain.Event, error) {
	if !isSuccess(statusCode) {
		return domain.Event{}, errorFromResponse(statusCode, data)
	}

	var response eventResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse event response: %w", err)
	}
	if response.Event == nil {
		return domain.Event{}, fmt.Errorf("event response is missing event")
	}

	return *response.Event, nil
}

// The events API answers a create with either the new event, or the full list with the new event last
func eventFromCreateResponse(statusCode int, data []byte) (domain.Event, error) {
	if !isSuccess(statusCode) {
		return domain.Event{}, errorFromResponse(statusCode, data)
	}

	var single eventResponse
	if err := json.Unmarshal(data, &single); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse create response: %w", err)
	}
	if single.Event != nil {
		return *single.Event, nil
	}

	var list eventsResponse
	if err := json.Unmarshal(data, &list); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse create response: %w", err)
	}
	if list.Events == nil || len(*list.Events) == 0 {
		return domain.Event{}, fmt.Errorf("create response is missing the created event")
	}

	events := *list.Events
	return events[len(events)-1], nil
}

// An update is answered with the updated event or a plain acknowledgement
func eventFromUpdateResponse(statusCode int, data []byte, id string, input domain.EventInput) (domain.Event, error) {
	if !isSuccess(statusCode) {
		return domain.Event{}, errorFromResponse(statusCode, data)
	}

	if len(data) > 0 {
		var response eventResponse
		if err := json.Unmarshal(data, &response); err == nil && response.Event != nil {
			return *response.Event, nil
		}
	}

	return input.WithID(id), nil
}

func checkDeleteResponse(statusCode int, data []byte) error {
	if !isSuccess(statusCode) {
		return errorFromResponse(statusCode, data)
	}
	return nil
}

func imagesFromResponse(statusCode int, data []byte) ([]domain.Image, error) {
	if !isSuccess(statusCode) {
		return nil, errorFromResponse(statusCode, data)
	}

	var response imagesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse images response: %w", err)
	}
	if response.Images == nil {
		return nil, fmt.Errorf("images response is missing images")
	}

	return *response.Images, nil
}
