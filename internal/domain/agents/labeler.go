package agents

import (
	"context"
	"os"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"go.uber.org/zap"
)

// Labeler asks the first vision model for labels of every image that has none yet.
type Labeler struct {
	state   services.StateView
	factory interfaces.InferenceClientFactory
	spawner services.Spawner
	logger  *zap.Logger

	cancel context.CancelFunc
}

func NewLabeler(state services.StateView, factory interfaces.InferenceClientFactory, spawner services.Spawner, logger *zap.Logger) *Labeler {
	return &Labeler{
		state:   state,
		factory: factory,
		spawner: spawner,
		logger:  logger,
	}
}

func (l *Labeler) Name() string {
	return "labeler"
}

func (l *Labeler) Update(ev events.Event) {
	switch ev.(type) {
	case events.LabelingStarted:
		if l.cancel != nil {
			l.cancel()
		}
		l.cancel = l.spawner.SpawnCancelable(l.labelTask())
	case events.LabelingFinished:
		l.cancel = nil
	}
}

// Unlabeled lists the files of dirs that have no labels, in directory order. A file
// tracked by nested directories is listed once, and not at all if any record labels it.
func Unlabeled(dirs []entities.Directory) []string {
	seen := make(map[string]bool)
	for _, dir := range dirs {
		for _, f := range dir.Files {
			if f.IsLabeled() {
				seen[f.Path] = true
			}
		}
	}

	var files []string
	for _, dir := range dirs {
		for _, f := range dir.Files {
			if !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f.Path)
			}
		}
	}
	return files
}

func (l *Labeler) labelTask() services.Task {
	files := Unlabeled(l.state.Directories())
	url := l.state.ServerURL()
	var model string
	if vision := l.state.VisionModels(); len(vision) > 0 {
		model = vision[0].Name
	}
	logger := l.logger

	return services.Task{Name: "label-images", Run: func(ctx context.Context, emit events.Emitter) {
		emit.Send(events.LabelingQueued{Total: len(files)})

		if model == "" {
			emit.Send(events.Diagnostic{Source: "labeler", Message: "no vision model available"})
			emit.Send(events.LabelingFinished{})
			return
		}
		client, err := l.factory.NewClient(url)
		if err != nil {
			emit.Send(events.Diagnostic{Source: "labeler", Message: err.Error()})
			emit.Send(events.LabelingFinished{})
			return
		}

		labeled := 0
		for _, path := range files {
			if ctx.Err() != nil {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("Skipping unreadable image", zap.String("path", path), zap.Error(err))
				continue
			}
			answer, err := client.Generate(ctx, &entities.GenerateRequest{
				Model:       model,
				Prompt:      LabelPrompt,
				Images:      [][]byte{data},
				Temperature: entities.Deterministic(),
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Labeling request failed", zap.String("path", path), zap.Error(err))
				continue
			}
			labels := ParseLabels(answer)
			if len(labels) == 0 {
				continue
			}
			labeled++
			emit.Send(events.ImageLabeled{File: path, Labels: labels, Raw: answer})
		}

		logger.Info("Labeling finished", zap.Int("labeled", labeled), zap.Int("queued", len(files)))
		emit.Send(events.LabelingFinished{Labeled: labeled})
	}}
}
