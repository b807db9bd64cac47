package ports_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/eventlight/internal/adapters/eventprovider"
	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/ports"
	"github.com/Amund211/eventlight/internal/querycache"
)

type countingProvider struct {
	ports.EventProvider

	mu    sync.Mutex
	calls map[string]int
}

func newCountingProvider() *countingProvider {
	return &countingProvider{
		EventProvider: eventprovider.NewMockedEventsAPI(),
		calls:         map[string]int{},
	}
}

func (p *countingProvider) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[name]++
}

func (p *countingProvider) callCount(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *countingProvider) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	p.record("ListEvents")
	return p.EventProvider.ListEvents(ctx, filter)
}

func (p *countingProvider) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	p.record("GetEvent")
	return p.EventProvider.GetEvent(ctx, id)
}

type failingProvider struct {
	ports.EventProvider
	err error
}

func (p *failingProvider) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return domain.Event{}, p.err
}

func (p *failingProvider) CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error) {
	return domain.Event{}, p.err
}

func (p *failingProvider) ListImages(ctx context.Context) ([]domain.Image, error) {
	return nil, p.err
}

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	t.Cleanup(cancel)
	return logging.AddToContext(ctx, slog.New(slog.DiscardHandler))
}

func newViews(t *testing.T, provider ports.EventProvider, staleTime time.Duration) (*ports.Views, *bytes.Buffer) {
	t.Helper()

	store := querycache.NewStore(querycache.Options{GCTime: time.Minute})
	t.Cleanup(store.Dispose)

	out := &bytes.Buffer{}
	views := ports.NewViews(ports.ViewsOptions{
		Store:        store,
		Provider:     provider,
		StaleTime:    staleTime,
		ImageBaseURL: "http://localhost:3000",
		Out:          out,
	})
	return views, out
}

// slowProvider answers after a delay, long enough for a view to render its header first
type slowProvider struct {
	ports.EventProvider
	delay time.Duration
}

func (p *slowProvider) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	}
	return p.EventProvider.GetEvent(ctx, id)
}
