package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	textModel   = entities.Model{Name: "llama3", Families: []string{"llama"}}
	visionModel = entities.Model{Name: "llava", Families: []string{"llama", "clip"}}
)

func newImageAgent(t *testing.T, client *fakeClient, rec *recorder, spawner services.Spawner) (*ImageAgent, *services.AppState) {
	t.Helper()
	state := newState(textModel, visionModel)
	state.Apply(events.AgentSelected{Agent: entities.AgentImages})
	agent := NewImageAgent(state, fakeFactory{client: client}, rec, spawner, nil, zap.NewNop())
	agent.Update(events.AgentSelected{Agent: entities.AgentImages})
	require.True(t, agent.Active())
	return agent, state
}

func TestImageAgent_ToolChatWhenIndexEmpty(t *testing.T) {
	client := &fakeClient{
		chat: func(messages []*entities.Message, tools []entities.Tool) (*entities.Message, error) {
			return entities.NewMessage(entities.RoleAssistant, "I found /pics/cat.png"), nil
		},
		generate: func(ctx context.Context, req *entities.GenerateRequest) (string, error) {
			switch req.System {
			case intentSystemPrompt:
				return "false", nil
			case structuredSystemPrompt:
				return `{"images":[{"path":"/pics/cat.png","name":"cat","extension":"png"}]}`, nil
			}
			return "", nil
		},
	}
	rec := &recorder{}
	agent, _ := newImageAgent(t, client, rec, inlineSpawner{emit: rec})

	agent.Update(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, "list images in /pics")})

	all := rec.all()
	require.Len(t, ofType[events.ChatResponse](all), 1)
	found := ofType[events.FoundImages](all)
	require.Len(t, found, 1)
	assert.Equal(t, entities.FoundByTools, found[0].Source)
	assert.Equal(t, "/pics/cat.png", found[0].Images[0].Path)

	agent.Update(found[0])
	agent.Update(found[0])
	assert.Len(t, agent.Index(), 1)
}

func TestImageAgent_MalformedStructuredOutputIsDropped(t *testing.T) {
	client := &fakeClient{
		generate: func(ctx context.Context, req *entities.GenerateRequest) (string, error) {
			if req.System == structuredSystemPrompt {
				return "not json", nil
			}
			return "false", nil
		},
	}
	rec := &recorder{}
	agent, _ := newImageAgent(t, client, rec, inlineSpawner{emit: rec})

	agent.Update(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, "hi")})

	assert.Len(t, ofType[events.ChatResponse](rec.all()), 1)
	assert.Empty(t, ofType[events.FoundImages](rec.all()))
	assert.Len(t, ofType[events.Diagnostic](rec.all()), 1)
}

func TestImageAgent_VisionSweep(t *testing.T) {
	dir := t.TempDir()
	paths := writeImages(t, dir, "cat.png", "dog.png")
	client := &fakeClient{
		generate: func(ctx context.Context, req *entities.GenerateRequest) (string, error) {
			switch req.System {
			case intentSystemPrompt:
				return "true", nil
			case rephraseSystemPrompt:
				return " Is a cat on this picture? ", nil
			case visionSystemPrompt:
				if strings.Contains(string(req.Images[0]), "cat") {
					return "Yes", nil
				}
				return "false", nil
			}
			return "", nil
		},
	}
	rec := &recorder{}
	agent, _ := newImageAgent(t, client, rec, inlineSpawner{emit: rec})
	agent.Update(events.DirectoryScanned{Path: dir, Files: paths})

	agent.Update(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, "show me pictures of cats")})

	all := rec.all()
	rephrased := ofType[events.PromptRephrased](all)
	require.Len(t, rephrased, 1)
	assert.Equal(t, "Is a cat on this picture?", rephrased[0].Question)
	sub := ofType[events.ChatSubResponse](all)
	require.Len(t, sub, 1)
	assert.Equal(t, "Is a cat on this picture?", sub[0].Reply.Content)
	assert.Len(t, ofType[events.VisionChecked](all), 2)

	found := ofType[events.FoundImages](all)
	require.Len(t, found, 1)
	assert.Equal(t, entities.FoundByVision, found[0].Source)
	assert.Equal(t, []entities.ImageRef{entities.NewImageRef(paths[0])}, found[0].Images)

	vision := client.visionRequests()
	require.Len(t, vision, 2)
	for _, req := range vision {
		assert.Equal(t, "llava", req.Model)
		require.NotNil(t, req.Temperature)
		assert.Zero(t, *req.Temperature)
		assert.Contains(t, req.Prompt, visionPromptSuffix)
	}
	assert.Nil(t, agent.Sweeper().Current())
}

func TestImageAgent_NewSweepCancelsPrevious(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	abc := writeImages(t, first, "A.png", "B.png", "C.png")
	de := writeImages(t, second, "D.png", "E.png")

	blocked := make(chan struct{}, 1)
	client := &fakeClient{
		generate: func(ctx context.Context, req *entities.GenerateRequest) (string, error) {
			switch req.System {
			case intentSystemPrompt:
				return "true", nil
			case rephraseSystemPrompt:
				return "Is a letter on this picture?", nil
			}
			img := string(req.Images[0])
			if strings.HasSuffix(img, "A.png") {
				blocked <- struct{}{}
				<-ctx.Done()
				return "", ctx.Err()
			}
			if strings.HasSuffix(img, "D.png") {
				return "yes", nil
			}
			return "no", nil
		},
	}
	rec := &recorder{}
	runner := services.NewRunner(rec, zap.NewNop())
	defer runner.Stop()
	agent, _ := newImageAgent(t, client, rec, runner)

	agent.Update(events.DirectoryScanned{Path: first, Files: abc})
	agent.Update(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, "letters")})

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("first sweep never started")
	}

	agent.Update(events.DirectoryRemoved{Path: first})
	agent.Update(events.DirectoryScanned{Path: second, Files: de})
	agent.Update(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, "letters")})

	require.NoError(t, runner.Wait())

	found := ofType[events.FoundImages](rec.all())
	require.Len(t, found, 1)
	assert.Equal(t, []entities.ImageRef{entities.NewImageRef(de[0])}, found[0].Images)

	var visited []string
	for _, req := range client.visionRequests() {
		visited = append(visited, string(req.Images[0]))
	}
	assert.Equal(t, []string{"img:A.png", "img:D.png", "img:E.png"}, visited)
}

func TestImageAgent_IndexFollowsDirectories(t *testing.T) {
	rec := &recorder{}
	agent, _ := newImageAgent(t, &fakeClient{}, rec, inlineSpawner{emit: rec})

	agent.Update(events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/a.png", "/pics/b.png"}})
	agent.Update(events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/a.png"}})
	assert.Len(t, agent.Index(), 2)

	agent.Update(events.FilesChanged{Dir: "/pics", Added: []string{"/pics/c.png"}, Removed: []string{"/pics/b.png"}})
	assert.Equal(t, refs("/pics/a.png", "/pics/c.png"), agent.Index())

	agent.Update(events.DirectoryRemoved{Path: "/pics"})
	assert.Empty(t, agent.Index())
}

func TestImageAgent_LateScanAfterRemovalIsNotIndexed(t *testing.T) {
	rec := &recorder{}
	agent, state := newImageAgent(t, &fakeClient{}, rec, inlineSpawner{emit: rec})
	dispatch := func(ev events.Event) {
		state.Apply(ev)
		agent.Update(ev)
	}

	dispatch(events.DirectoryPicked{Path: "/pics"})
	late := events.DirectoryScanned{Path: "/pics", Generation: state.ScanGeneration("/pics"), Files: []string{"/pics/a.png"}}
	dispatch(events.DirectoryRemoved{Path: "/pics"})
	dispatch(late)

	assert.Empty(t, agent.Index())
}
