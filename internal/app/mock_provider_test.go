package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/Amund211/eventlight/internal/querycache"
	"github.com/stretchr/testify/require"
)

type mockEventProvider struct {
	t *testing.T

	mu    sync.Mutex
	calls map[string]int

	listEvents  func(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	getEvent    func(ctx context.Context, id string) (domain.Event, error)
	createEvent func(ctx context.Context, input domain.EventInput) (domain.Event, error)
	updateEvent func(ctx context.Context, id string, input domain.EventInput) (domain.Event, error)
	deleteEvent func(ctx context.Context, id string) error
	listImages  func(ctx context.Context) ([]domain.Image, error)
}

func newMockEventProvider(t *testing.T) *mockEventProvider {
	return &mockEventProvider{t: t, calls: map[string]int{}}
}

func (m *mockEventProvider) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockEventProvider) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockEventProvider) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	m.record("ListEvents")
	require.NotNil(m.t, m.listEvents, "unexpected call to ListEvents")
	return m.listEvents(ctx, filter)
}

func (m *mockEventProvider) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	m.record("GetEvent")
	require.NotNil(m.t, m.getEvent, "unexpected call to GetEvent")
	return m.getEvent(ctx, id)
}

func (m *mockEventProvider) CreateEvent(ctx context.Context, input domain.EventInput) (domain.Event, error) {
	m.record("CreateEvent")
	require.NotNil(m.t, m.createEvent, "unexpected call to CreateEvent")
	return m.createEvent(ctx, input)
}

func (m *mockEventProvider) UpdateEvent(ctx context.Context, id string, input domain.EventInput) (domain.Event, error) {
	m.record("UpdateEvent")
	require.NotNil(m.t, m.updateEvent, "unexpected call to UpdateEvent")
	return m.updateEvent(ctx, id, input)
}

func (m *mockEventProvider) DeleteEvent(ctx context.Context, id string) error {
	m.record("DeleteEvent")
	require.NotNil(m.t, m.deleteEvent, "unexpected call to DeleteEvent")
	return m.deleteEvent(ctx, id)
}

func (m *mockEventProvider) ListImages(ctx context.Context) ([]domain.Image, error) {
	m.record("ListImages")
	require.NotNil(m.t, m.listImages, "unexpected call to ListImages")
	return m.listImages(ctx)
}

func newStore(t *testing.T) *querycache.Store {
	t.Helper()
	store := querycache.NewStore(querycache.Options{GCTime: time.Minute})
	t.Cleanup(store.Dispose)
	return store
}

func awaitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
