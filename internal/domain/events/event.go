package events

import (
	"slices"

	"github.com/drujensen/deskimager/internal/domain/entities"
)

// Event is the closed set of notifications carried by the Bus. Only types declared in
// this package implement it.
type Event interface {
	clone() Event
}

// Clone returns a copy of ev whose slices are not shared with ev.
func Clone(ev Event) Event {
	if ev == nil {
		return nil
	}
	return ev.clone()
}

// Connection

type (
	ServerURLChanged struct {
		URL string
	}
	ProbeRequested      struct{}
	ServerStatusChanged struct {
		URL       string
		Reachable bool
		Err       string
	}
	ModelsRefreshRequested struct{}
	// ModelsUpdated carries the model list of the server at URL.
	ModelsUpdated struct {
		URL    string
		Models []entities.Model
	}
)

// Agents

type (
	AgentSelected struct {
		Agent entities.AgentKind
	}
	AgentModelSelected struct {
		Agent entities.AgentKind
		Model string
	}
	ModelBound struct {
		Agent entities.AgentKind
		Model string
		Epoch uint64
	}
	SystemPromptChanged struct {
		Agent  entities.AgentKind
		Prompt string
	}
)

// Chat

type (
	UserMessageSent struct {
		Message *entities.Message
	}
	ChatResponse struct {
		Agent   entities.AgentKind
		Epoch   uint64
		Request *entities.Message
		Reply   *entities.Message
	}
	ChatSubResponse struct {
		Agent entities.AgentKind
		Reply *entities.Message
	}
	ToolCalled struct {
		Call entities.ToolCallEvent
	}
)

// Image search

type (
	IntentClassified struct {
		IsSearch bool
		Message  string
	}
	PromptRephrased struct {
		Question string
	}
	VisionChecked struct {
		SweepID string
		Image   entities.ImageRef
		Answer  string
		Match   bool
	}
	FoundImages struct {
		Source entities.FoundImagesSource
		Images []entities.ImageRef
	}
)

// Files

type (
	DirectoryPicked struct {
		Path string
	}
	// DirectoryScanned is stale unless Generation matches the state's scan generation
	// for Path.
	DirectoryScanned struct {
		Path       string
		Generation uint64
		Files      []string
	}
	DirectoryRemoved struct {
		Path string
	}
	FilesChanged struct {
		Dir     string
		Added   []string
		Removed []string
	}
	ThumbnailsReady struct {
		Dir        string
		Thumbnails []entities.Thumbnail
	}
	LabelSearchRequested struct {
		Query string
	}
)

// Labeling

type (
	LabelingStarted struct{}
	LabelingQueued  struct {
		Total int
	}
	ImageLabeled struct {
		File   string
		Labels []string
		Raw    string
	}
	LabelingFinished struct {
		Labeled int
	}
)

// Diagnostic reports a recoverable failure that is logged but not shown.
type Diagnostic struct {
	Source  string
	Message string
}

func (e ServerURLChanged) clone() Event { return e }
func (e ProbeRequested) clone() Event { return e }
func (e ServerStatusChanged) clone() Event { return e }
func (e ModelsRefreshRequested) clone() Event { return e }
func (e ModelsUpdated) clone() Event {
	models := make([]entities.Model, len(e.Models))
	for i, m := range e.Models {
		m.Families = slices.Clone(m.Families)
		models[i] = m
	}
	return ModelsUpdated{URL: e.URL, Models: models}
}

func (e AgentSelected) clone() Event { return e }
func (e AgentModelSelected) clone() Event { return e }
func (e ModelBound) clone() Event { return e }
func (e SystemPromptChanged) clone() Event { return e }

func (e UserMessageSent) clone() Event {
	return UserMessageSent{Message: e.Message.Clone()}
}

func (e ChatResponse) clone() Event {
	return ChatResponse{Agent: e.Agent, Epoch: e.Epoch, Request: e.Request.Clone(), Reply: e.Reply.Clone()}
}

func (e ChatSubResponse) clone() Event {
	return ChatSubResponse{Agent: e.Agent, Reply: e.Reply.Clone()}
}

func (e ToolCalled) clone() Event { return e }
func (e IntentClassified) clone() Event { return e }
func (e PromptRephrased) clone() Event { return e }
func (e VisionChecked) clone() Event { return e }

func (e FoundImages) clone() Event {
	return FoundImages{Source: e.Source, Images: slices.Clone(e.Images)}
}

func (e DirectoryPicked) clone() Event { return e }

func (e DirectoryScanned) clone() Event {
	return DirectoryScanned{Path: e.Path, Generation: e.Generation, Files: slices.Clone(e.Files)}
}

func (e DirectoryRemoved) clone() Event { return e }

func (e FilesChanged) clone() Event {
	return FilesChanged{Dir: e.Dir, Added: slices.Clone(e.Added), Removed: slices.Clone(e.Removed)}
}

func (e ThumbnailsReady) clone() Event {
	return ThumbnailsReady{Dir: e.Dir, Thumbnails: slices.Clone(e.Thumbnails)}
}

func (e LabelSearchRequested) clone() Event { return e }
func (e LabelingStarted) clone() Event { return e }
func (e LabelingQueued) clone() Event { return e }

func (e ImageLabeled) clone() Event {
	return ImageLabeled{File: e.File, Labels: slices.Clone(e.Labels), Raw: e.Raw}
}

func (e LabelingFinished) clone() Event { return e }
func (e Diagnostic) clone() Event { return e }
