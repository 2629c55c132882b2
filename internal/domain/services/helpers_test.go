package services

import (
	"context"
	"sync"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Send(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// inlineSpawner runs tasks synchronously so tests see their events immediately.
type inlineSpawner struct {
	emit  events.Emitter
	names []string
}

func (s *inlineSpawner) Spawn(task Task) {
	s.names = append(s.names, task.Name)
	task.Run(context.Background(), s.emit)
}

func (s *inlineSpawner) SpawnCancelable(task Task) context.CancelFunc {
	s.Spawn(task)
	return func() {}
}

// collectingSpawner records tasks without running them.
type collectingSpawner struct {
	tasks []Task
}

func (s *collectingSpawner) Spawn(task Task) {
	s.tasks = append(s.tasks, task)
}

func (s *collectingSpawner) SpawnCancelable(task Task) context.CancelFunc {
	s.Spawn(task)
	return func() {}
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Chat(ctx context.Context, model string, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*entities.Message, error) {
	args := m.Called(ctx, model, messages, tools, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *mockClient) Generate(ctx context.Context, req *entities.GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockClient) ListModels(ctx context.Context) ([]entities.Model, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Model), args.Error(1)
}

func (m *mockClient) Probe(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type staticFactory struct {
	client interfaces.InferenceClient
	err    error
	urls   []string
}

func (f *staticFactory) NewClient(baseURL string) (interfaces.InferenceClient, error) {
	f.urls = append(f.urls, baseURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func taskNames(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
