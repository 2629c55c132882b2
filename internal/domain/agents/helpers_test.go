package agents

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	mu        sync.Mutex
	generate  func(ctx context.Context, req *entities.GenerateRequest) (string, error)
	chat      func(messages []*entities.Message, tools []entities.Tool) (*entities.Message, error)
	requests  []*entities.GenerateRequest
	chats     [][]*entities.Message
	chatModel []string
}

func (f *fakeClient) Chat(ctx context.Context, model string, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*entities.Message, error) {
	f.mu.Lock()
	f.chats = append(f.chats, messages)
	f.chatModel = append(f.chatModel, model)
	f.mu.Unlock()
	if f.chat == nil {
		return entities.NewMessage(entities.RoleAssistant, "ok"), nil
	}
	return f.chat(messages, tools)
}

func (f *fakeClient) Generate(ctx context.Context, req *entities.GenerateRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.generate(ctx, req)
}

func (f *fakeClient) ListModels(ctx context.Context) ([]entities.Model, error) { return nil, nil }

func (f *fakeClient) Probe(ctx context.Context) error { return nil }

func (f *fakeClient) generateRequests() []*entities.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entities.GenerateRequest(nil), f.requests...)
}

// visionRequests returns the requests that carried an image.
func (f *fakeClient) visionRequests() []*entities.GenerateRequest {
	var vision []*entities.GenerateRequest
	for _, r := range f.generateRequests() {
		if len(r.Images) > 0 {
			vision = append(vision, r)
		}
	}
	return vision
}

type fakeFactory struct {
	client interfaces.InferenceClient
}

func (f fakeFactory) NewClient(baseURL string) (interfaces.InferenceClient, error) {
	return f.client, nil
}

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

func ofType[T events.Event](evs []events.Event) []T {
	var out []T
	for _, ev := range evs {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

type inlineSpawner struct {
	emit events.Emitter
}

func (s inlineSpawner) Spawn(task services.Task) {
	task.Run(context.Background(), s.emit)
}

func (s inlineSpawner) SpawnCancelable(task services.Task) context.CancelFunc {
	s.Spawn(task)
	return func() {}
}

func newState(models ...entities.Model) *services.AppState {
	state := services.NewAppState(services.NewConnectionService(fakeFactory{}, zap.NewNop()), "http://127.0.0.1:11434", nil, zap.NewNop())
	state.Apply(events.ModelsUpdated{URL: state.ServerURL(), Models: models})
	return state
}

// writeImages creates files with fake image bytes and returns their paths.
func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("img:"+name), 0644))
	}
	return paths
}
