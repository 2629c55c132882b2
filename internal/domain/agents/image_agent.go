package agents

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"go.uber.org/zap"
)

// ImageAgent finds pictures. A request that describes what should be on a picture is
// answered by asking the vision model about every known image. Anything else goes through
// a chat with file listing tools.
type ImageAgent struct {
	*Binding
	spawner services.Spawner
	tools   []entities.Tool
	sweeper *Sweeper

	index []entities.ImageRef
	known map[string]bool
}

func NewImageAgent(state services.StateView, factory interfaces.InferenceClientFactory, bus events.Emitter, spawner services.Spawner, tools []entities.Tool, logger *zap.Logger) *ImageAgent {
	return &ImageAgent{
		Binding: NewBinding(entities.AgentImages, state, factory, bus, logger),
		spawner: spawner,
		tools:   tools,
		sweeper: &Sweeper{},
		known:   make(map[string]bool),
	}
}

func (a *ImageAgent) Name() string {
	return "agent/" + a.kind.String()
}

// Index returns the images the agent knows about.
func (a *ImageAgent) Index() []entities.ImageRef {
	return append([]entities.ImageRef(nil), a.index...)
}

func (a *ImageAgent) Sweeper() *Sweeper {
	return a.sweeper
}

func (a *ImageAgent) Update(ev events.Event) {
	a.HandleLifecycle(ev)

	switch e := ev.(type) {
	case events.DirectoryScanned:
		if services.CurrentScan(a.state, e) {
			a.addPaths(e.Files...)
		}
	case events.FilesChanged:
		a.removeWhere(func(ref entities.ImageRef) bool {
			for _, p := range e.Removed {
				if p == ref.Path {
					return true
				}
			}
			return false
		})
		a.addPaths(e.Added...)
	case events.DirectoryRemoved:
		dir := entities.Directory{Path: e.Path}
		a.removeWhere(func(ref entities.ImageRef) bool { return dir.Contains(ref.Path) })
	case events.FoundImages:
		if e.Source == entities.FoundByTools {
			a.add(e.Images...)
		}
	case events.UserMessageSent:
		if a.Active() {
			a.spawner.Spawn(a.searchTask(e.Message))
		}
	}
}

func (a *ImageAgent) addPaths(paths ...string) {
	for _, p := range paths {
		a.add(entities.NewImageRef(p))
	}
}

func (a *ImageAgent) add(refs ...entities.ImageRef) {
	for _, ref := range refs {
		if ref.Path == "" || a.known[ref.Path] {
			continue
		}
		a.known[ref.Path] = true
		a.index = append(a.index, ref)
	}
}

func (a *ImageAgent) removeWhere(drop func(entities.ImageRef) bool) {
	kept := a.index[:0]
	for _, ref := range a.index {
		if drop(ref) {
			delete(a.known, ref.Path)
			continue
		}
		kept = append(kept, ref)
	}
	a.index = kept
}

// imageSearch is everything one search needs, copied off the dispatch goroutine.
type imageSearch struct {
	request
	visionModel string
	user        *entities.Message
	messages    []*entities.Message
	index       []entities.ImageRef
	tools       []entities.Tool
	sweeper     *Sweeper
	logger      *zap.Logger
}

func (a *ImageAgent) searchTask(user *entities.Message) services.Task {
	search := &imageSearch{
		request:  a.snapshot(),
		user:     user.Clone(),
		messages: a.Conversation(user),
		index:    a.Index(),
		tools:    a.tools,
		sweeper:  a.sweeper,
		logger:   a.logger,
	}
	search.visionModel = search.model
	if vision := a.state.VisionModels(); len(vision) > 0 {
		search.visionModel = vision[0].Name
	}
	return services.Task{Name: "image-search", Run: search.run}
}

func (s *imageSearch) run(ctx context.Context, emit events.Emitter) {
	isSearch, err := s.classify(ctx)
	if err != nil {
		s.fail(emit, "classify", err)
		return
	}
	emit.Send(events.IntentClassified{IsSearch: isSearch, Message: s.user.Content})

	if !isSearch || len(s.index) == 0 {
		s.toolChat(ctx, emit)
		return
	}

	question, err := s.rephrase(ctx)
	if err != nil {
		s.fail(emit, "rephrase", err)
		return
	}
	emit.Send(events.PromptRephrased{Question: question})
	emit.Send(events.ChatSubResponse{Agent: s.kind, Reply: entities.NewMessage(entities.RoleAssistant, question)})

	s.sweep(ctx, emit, question)
}

func (s *imageSearch) classify(ctx context.Context) (bool, error) {
	answer, err := s.client.Generate(ctx, &entities.GenerateRequest{
		Model:       s.model,
		System:      intentSystemPrompt,
		Prompt:      s.user.Content,
		Temperature: entities.Deterministic(),
	})
	if err != nil {
		return false, err
	}
	s.logger.Debug("Intent classified", zap.String("answer", answer))
	return IsAffirmative(answer), nil
}

func (s *imageSearch) rephrase(ctx context.Context) (string, error) {
	question, err := s.client.Generate(ctx, &entities.GenerateRequest{
		Model:       s.model,
		System:      rephraseSystemPrompt,
		Prompt:      s.user.Content,
		Temperature: entities.Deterministic(),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(question), nil
}

func (s *imageSearch) toolChat(ctx context.Context, emit events.Emitter) {
	reply, err := s.client.Chat(ctx, s.model, s.messages, s.tools, nil)
	if err != nil {
		s.fail(emit, "chat", err)
		return
	}
	emit.Send(events.ChatResponse{Agent: s.kind, Epoch: s.epoch, Request: s.user, Reply: reply})

	images, err := s.extractImages(ctx, reply.Content)
	if err != nil {
		s.logger.Warn("Structured output could not be parsed", zap.Error(err))
		emit.Send(events.Diagnostic{Source: "image-search", Message: "structured output: " + err.Error()})
		return
	}
	if len(images) > 0 {
		emit.Send(events.FoundImages{Source: entities.FoundByTools, Images: images})
	}
}

type structuredImages struct {
	Images []entities.ImageRef `json:"images"`
}

func (s *imageSearch) extractImages(ctx context.Context, text string) ([]entities.ImageRef, error) {
	raw, err := s.client.Generate(ctx, &entities.GenerateRequest{
		Model:       s.model,
		System:      structuredSystemPrompt,
		Prompt:      text,
		Format:      json.RawMessage(imagesSchema),
		Temperature: entities.Deterministic(),
	})
	if err != nil {
		return nil, err
	}
	var parsed structuredImages
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	var images []entities.ImageRef
	for _, img := range parsed.Images {
		if img.Path != "" {
			images = append(images, img)
		}
	}
	return images, nil
}

func (s *imageSearch) sweep(ctx context.Context, emit events.Emitter, question string) {
	ctx, sw := s.sweeper.Begin(ctx, question, s.index)
	defer s.sweeper.Finish(sw)

	prompt := question + " " + visionPromptSuffix
	for img, ok := sw.Next(); ok; img, ok = sw.Next() {
		if ctx.Err() != nil {
			return
		}
		data, err := os.ReadFile(img.Path)
		if err != nil {
			s.logger.Debug("Skipping unreadable image", zap.String("path", img.Path), zap.Error(err))
			continue
		}
		answer, err := s.client.Generate(ctx, &entities.GenerateRequest{
			Model:       s.visionModel,
			System:      visionSystemPrompt,
			Prompt:      prompt,
			Images:      [][]byte{data},
			Temperature: entities.Deterministic(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("Vision request failed", zap.String("path", img.Path), zap.Error(err))
			continue
		}
		match := IsAffirmative(answer)
		sw.Record(img, match)
		emit.Send(events.VisionChecked{SweepID: sw.ID, Image: img, Answer: answer, Match: match})
	}

	if ctx.Err() != nil {
		return
	}
	emit.Send(events.FoundImages{Source: entities.FoundByVision, Images: sw.Found()})
}

func (s *imageSearch) fail(emit events.Emitter, step string, err error) {
	s.logger.Error("Image search failed", zap.String("step", step), zap.Error(err))
	emit.Send(events.Diagnostic{Source: "image-search/" + step, Message: err.Error()})
}
