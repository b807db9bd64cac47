package eventprovider

import (
	"context"
	"net/http"

	"github.com/Amund211/eventlight/internal/domain"
)

type EventProvider interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListImages(ctx context.Context) ([]domain.Image, error)
}

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	Wait(r *http.Request) error
}
