package services

import (
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "http://127.0.0.1:11434"

func newTestState() *AppState {
	conn := NewConnectionService(&staticFactory{}, zap.NewNop())
	return NewAppState(conn, testURL, map[entities.AgentKind]string{
		entities.AgentChat: "be brief",
	}, zap.NewNop())
}

func TestAppState_ServerURLChangedSpawnsProbeAndRefresh(t *testing.T) {
	state := newTestState()

	tasks := state.Apply(events.ServerURLChanged{URL: "http://gpu-box:11434"})

	assert.Equal(t, "http://gpu-box:11434", state.ServerURL())
	assert.Equal(t, StatusUnknown, state.Status())
	assert.Equal(t, []string{"probe", "refresh-models"}, taskNames(tasks))
}

func TestAppState_StaleStatusIsIgnored(t *testing.T) {
	state := newTestState()
	state.Apply(events.ServerURLChanged{URL: "http://new:11434"})

	state.Apply(events.ServerStatusChanged{URL: "http://127.0.0.1:11434", Reachable: true})

	assert.Equal(t, StatusUnknown, state.Status())
}

func TestAppState_ModelsFromPreviousServerAreIgnored(t *testing.T) {
	state := newTestState()
	state.Apply(events.ServerURLChanged{URL: "http://a:11434"})
	state.Apply(events.ServerURLChanged{URL: "http://b:11434"})

	state.Apply(events.ModelsUpdated{URL: "http://b:11434", Models: []entities.Model{{Name: "on-b"}}})
	state.Apply(events.ModelsUpdated{URL: "http://a:11434", Models: []entities.Model{{Name: "on-a"}}})

	assert.Equal(t, "on-b", state.ActiveModel(entities.AgentChat))
	assert.Equal(t, []string{"on-b"}, entities.ModelNames(state.Models()))
}

func TestAppState_ReconnectRefreshesModels(t *testing.T) {
	state := newTestState()
	url := state.ServerURL()

	assert.Empty(t, state.Apply(events.ServerStatusChanged{URL: url, Reachable: false, Err: "refused"}))
	assert.Equal(t, StatusUnreachable, state.Status())

	tasks := state.Apply(events.ServerStatusChanged{URL: url, Reachable: true})
	assert.Equal(t, StatusReachable, state.Status())
	assert.Equal(t, []string{"refresh-models"}, taskNames(tasks))
}

func TestAppState_ModelsUpdatedPicksFirstModel(t *testing.T) {
	state := newTestState()

	state.Apply(events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "llama3"}, {Name: "llava", Families: []string{"clip"}}}})

	for _, kind := range entities.AgentKinds {
		assert.Equal(t, "llama3", state.ActiveModel(kind))
	}
	require.Len(t, state.VisionModels(), 1)
	assert.Equal(t, "llava", state.VisionModels()[0].Name)
}

func TestAppState_ModelsUpdatedKeepsSurvivingSelection(t *testing.T) {
	state := newTestState()
	state.Apply(events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "a"}, {Name: "b"}}})
	state.Apply(events.AgentModelSelected{Agent: entities.AgentImages, Model: "b"})

	state.Apply(events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "c"}, {Name: "b"}}})
	assert.Equal(t, "b", state.ActiveModel(entities.AgentImages))
	assert.Equal(t, "c", state.ActiveModel(entities.AgentChat))

	state.Apply(events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "d"}}})
	assert.Equal(t, "d", state.ActiveModel(entities.AgentImages))

	state.Apply(events.ModelsUpdated{URL: testURL})
	assert.Equal(t, "", state.ActiveModel(entities.AgentImages))
}

func TestAppState_UnknownModelSelectionIgnored(t *testing.T) {
	state := newTestState()
	state.Apply(events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "a"}}})

	state.Apply(events.AgentModelSelected{Agent: entities.AgentChat, Model: "missing"})

	assert.Equal(t, "a", state.ActiveModel(entities.AgentChat))
}

func TestAppState_DeterministicForSameEventOrder(t *testing.T) {
	sequence := []events.Event{
		events.ModelsUpdated{URL: testURL, Models: []entities.Model{{Name: "a"}, {Name: "b"}}},
		events.AgentSelected{Agent: entities.AgentImages},
		events.AgentModelSelected{Agent: entities.AgentImages, Model: "b"},
		events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/cat.png", "/pics/dog.png"}},
		events.ImageLabeled{File: "/pics/cat.png", Labels: []string{"cat"}},
		events.FilesChanged{Dir: "/pics", Added: []string{"/pics/new.png"}, Removed: []string{"/pics/dog.png"}},
	}

	first, second := newTestState(), newTestState()
	for _, ev := range sequence {
		first.Apply(ev)
		second.Apply(ev)
	}

	assert.Equal(t, first.Settings(), second.Settings())
	assert.Equal(t, first.ActiveModel(entities.AgentImages), second.ActiveModel(entities.AgentImages))
}

func TestAppState_DirectoryLifecycle(t *testing.T) {
	state := newTestState()
	state.Apply(events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/cat.png", "/pics/dog.png"}})
	state.Apply(events.ImageLabeled{File: "/pics/cat.png", Labels: []string{"cat", "animal"}})

	state.Apply(events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/cat.png", "/pics/bird.png"}})

	dirs := state.Directories()
	require.Len(t, dirs, 1)
	assert.Equal(t, []string{"cat", "animal"}, dirs[0].File("/pics/cat.png").Labels)
	assert.Nil(t, dirs[0].File("/pics/dog.png"))
	assert.Equal(t, 1, dirs[0].LabeledCount())

	state.Apply(events.DirectoryRemoved{Path: "/pics"})
	assert.Empty(t, state.Directories())
}

func TestAppState_SettingsRoundTrip(t *testing.T) {
	state := newTestState()
	state.Apply(events.ServerURLChanged{URL: "http://box:11434"})
	state.Apply(events.AgentSelected{Agent: entities.AgentWebScrape})
	state.Apply(events.SystemPromptChanged{Agent: entities.AgentImages, Prompt: "find pictures"})
	state.Apply(events.DirectoryScanned{Path: "/pics", Files: []string{"/pics/cat.png"}})
	state.Apply(events.ImageLabeled{File: "/pics/cat.png", Labels: []string{"cat"}})

	restored := newTestState()
	restored.Restore(state.Settings())

	assert.Equal(t, "http://box:11434", restored.ServerURL())
	assert.Equal(t, entities.AgentWebScrape, restored.ActiveAgent())
	assert.Equal(t, "find pictures", restored.SystemPrompt(entities.AgentImages))
	assert.Equal(t, "be brief", restored.SystemPrompt(entities.AgentChat))
	assert.Equal(t, state.Directories(), restored.Directories())
}

func TestAppState_LateScanDoesNotResurrectRemovedDirectory(t *testing.T) {
	state := newTestState()
	state.Apply(events.DirectoryPicked{Path: "/pics"})
	gen := state.ScanGeneration("/pics")
	state.Apply(events.DirectoryScanned{Path: "/pics", Generation: gen, Files: []string{"/pics/cat.png"}})
	require.Len(t, state.Directories(), 1)

	state.Apply(events.DirectoryRemoved{Path: "/pics"})
	state.Apply(events.DirectoryScanned{Path: "/pics", Generation: gen, Files: []string{"/pics/cat.png"}})

	assert.Empty(t, state.Directories())
}

func TestAppState_RepickSupersedesInFlightScan(t *testing.T) {
	state := newTestState()
	state.Apply(events.DirectoryPicked{Path: "/pics"})
	first := state.ScanGeneration("/pics")
	state.Apply(events.DirectoryPicked{Path: "/pics"})
	second := state.ScanGeneration("/pics")

	state.Apply(events.DirectoryScanned{Path: "/pics", Generation: first, Files: []string{"/pics/old.png"}})
	assert.Empty(t, state.Directories())

	state.Apply(events.DirectoryScanned{Path: "/pics", Generation: second, Files: []string{"/pics/new.png"}})
	require.Len(t, state.Directories(), 1)
	assert.NotNil(t, state.Directories()[0].File("/pics/new.png"))
}
