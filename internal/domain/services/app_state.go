package services

import (
	"slices"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"

	"go.uber.org/zap"
)

type ConnectionStatus int

const (
	StatusUnknown ConnectionStatus = iota
	StatusReachable
	StatusUnreachable
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusReachable:
		return "connected"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "connecting"
	}
}

// StateView is the read-only side of AppState.
type StateView interface {
	ServerURL() string
	Status() ConnectionStatus
	Models() []entities.Model
	VisionModels() []entities.Model
	ActiveAgent() entities.AgentKind
	ActiveModel(kind entities.AgentKind) string
	SystemPrompt(kind entities.AgentKind) string
	Directories() []entities.Directory
	ScanGeneration(path string) uint64
}

// AppState is the shared application state. It is owned by the goroutine running the
// Dispatcher and is only changed through Apply. Background work gets copies.
type AppState struct {
	conn   *ConnectionService
	logger *zap.Logger

	serverURL     string
	status        ConnectionStatus
	statusErr     string
	models        []entities.Model
	activeAgent   entities.AgentKind
	activeModels  map[entities.AgentKind]string
	systemPrompts map[entities.AgentKind]string
	directories   []entities.Directory
	scanGens      map[string]uint64
}

func NewAppState(conn *ConnectionService, serverURL string, systemPrompts map[entities.AgentKind]string, logger *zap.Logger) *AppState {
	prompts := make(map[entities.AgentKind]string, len(systemPrompts))
	for k, v := range systemPrompts {
		prompts[k] = v
	}
	return &AppState{
		conn:          conn,
		logger:        logger,
		serverURL:     serverURL,
		activeModels:  make(map[entities.AgentKind]string),
		systemPrompts: prompts,
		scanGens:      make(map[string]uint64),
	}
}

// Apply reduces ev into the state and returns the background tasks it asks for.
func (s *AppState) Apply(ev events.Event) []Task {
	switch e := ev.(type) {
	case events.ServerURLChanged:
		s.serverURL = e.URL
		s.status = StatusUnknown
		s.statusErr = ""
		return []Task{s.conn.ProbeTask(s.serverURL), s.conn.RefreshModelsTask(s.serverURL)}

	case events.ProbeRequested:
		return []Task{s.conn.ProbeTask(s.serverURL)}

	case events.ServerStatusChanged:
		if e.URL != s.serverURL {
			return nil
		}
		previous := s.status
		s.statusErr = e.Err
		if !e.Reachable {
			s.status = StatusUnreachable
			return nil
		}
		s.status = StatusReachable
		if previous == StatusUnreachable {
			return []Task{s.conn.RefreshModelsTask(s.serverURL)}
		}

	case events.ModelsRefreshRequested:
		return []Task{s.conn.RefreshModelsTask(s.serverURL)}

	case events.ModelsUpdated:
		if e.URL != s.serverURL {
			s.logger.Debug("Ignoring models of a previous server", zap.String("url", e.URL))
			return nil
		}
		s.models = e.Models
		for _, kind := range entities.AgentKinds {
			s.activeModels[kind] = entities.ReconcileActiveModel(s.activeModels[kind], s.models)
		}

	case events.AgentSelected:
		s.activeAgent = e.Agent

	case events.AgentModelSelected:
		if !slices.Contains(entities.ModelNames(s.models), e.Model) {
			s.logger.Warn("Ignoring selection of unknown model", zap.String("model", e.Model))
			return nil
		}
		s.activeModels[e.Agent] = e.Model

	case events.SystemPromptChanged:
		s.systemPrompts[e.Agent] = e.Prompt

	case events.DirectoryPicked:
		if path, err := ExpandPath(e.Path); err == nil {
			s.scanGens[path]++
		}

	case events.DirectoryScanned:
		if e.Generation != s.scanGens[e.Path] {
			s.logger.Debug("Ignoring stale directory scan", zap.String("path", e.Path))
			return nil
		}
		if dir := s.directory(e.Path); dir != nil {
			dir.Merge(e.Files)
			return nil
		}
		dir := entities.Directory{Path: e.Path}
		dir.Merge(e.Files)
		s.directories = append(s.directories, dir)

	case events.FilesChanged:
		if dir := s.directory(e.Dir); dir != nil {
			dir.Remove(e.Removed...)
			dir.Add(e.Added...)
		}

	case events.DirectoryRemoved:
		s.scanGens[e.Path]++
		s.directories = slices.DeleteFunc(s.directories, func(d entities.Directory) bool {
			return d.Path == e.Path
		})

	case events.ImageLabeled:
		for i := range s.directories {
			if f := s.directories[i].File(e.File); f != nil {
				f.Labels = slices.Clone(e.Labels)
			}
		}
	}
	return nil
}

func (s *AppState) directory(path string) *entities.Directory {
	for i := range s.directories {
		if s.directories[i].Path == path {
			return &s.directories[i]
		}
	}
	return nil
}

// ScanGeneration is bumped each time path is picked or removed. Only a scan carrying the
// current generation is applied.
func (s *AppState) ScanGeneration(path string) uint64 {
	return s.scanGens[path]
}

// CurrentScan reports whether a DirectoryScanned event is still wanted.
func CurrentScan(state StateView, e events.DirectoryScanned) bool {
	return e.Generation == state.ScanGeneration(e.Path)
}

func (s *AppState) ServerURL() string {
	return s.serverURL
}

func (s *AppState) Status() ConnectionStatus {
	return s.status
}

func (s *AppState) StatusError() string {
	return s.statusErr
}

func (s *AppState) Models() []entities.Model {
	return slices.Clone(s.models)
}

// VisionModels returns the vision-capable models in server order.
func (s *AppState) VisionModels() []entities.Model {
	var vision []entities.Model
	for _, m := range s.models {
		if m.IsVision() {
			vision = append(vision, m)
		}
	}
	return vision
}

func (s *AppState) ActiveAgent() entities.AgentKind {
	return s.activeAgent
}

func (s *AppState) ActiveModel(kind entities.AgentKind) string {
	return s.activeModels[kind]
}

func (s *AppState) SystemPrompt(kind entities.AgentKind) string {
	return s.systemPrompts[kind]
}

func (s *AppState) Directories() []entities.Directory {
	return entities.CloneDirectories(s.directories)
}

// Settings captures the persistent part of the state.
func (s *AppState) Settings() *entities.Settings {
	prompts := make(map[string]string, len(s.systemPrompts))
	for k, v := range s.systemPrompts {
		prompts[k.String()] = v
	}
	return &entities.Settings{
		ServerURL:     s.serverURL,
		ActiveAgent:   s.activeAgent.String(),
		Directories:   entities.CloneDirectories(s.directories),
		SystemPrompts: prompts,
	}
}

// Restore loads persisted settings. It is called once before the first drain.
func (s *AppState) Restore(settings *entities.Settings) {
	if settings == nil {
		return
	}
	if settings.ServerURL != "" {
		s.serverURL = settings.ServerURL
	}
	if kind, ok := entities.ParseAgentKind(settings.ActiveAgent); ok {
		s.activeAgent = kind
	}
	s.directories = entities.CloneDirectories(settings.Directories)
	for name, prompt := range settings.SystemPrompts {
		if kind, ok := entities.ParseAgentKind(name); ok {
			s.systemPrompts[kind] = prompt
		}
	}
}

var _ StateView = (*AppState)(nil)
