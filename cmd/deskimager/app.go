package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drujensen/deskimager/internal/domain/agents"
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"
	"github.com/drujensen/deskimager/internal/impl/config"
	"github.com/drujensen/deskimager/internal/impl/database"
	"github.com/drujensen/deskimager/internal/impl/defaults"
	"github.com/drujensen/deskimager/internal/impl/files"
	"github.com/drujensen/deskimager/internal/impl/integrations"
	repositoriesJson "github.com/drujensen/deskimager/internal/impl/repositories/json"
	repositoriesMongo "github.com/drujensen/deskimager/internal/impl/repositories/mongo"
	"github.com/drujensen/deskimager/internal/impl/thumbnails"
	"github.com/drujensen/deskimager/internal/impl/tools"
	"github.com/drujensen/deskimager/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func run(storage string) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	global, err := config.LoadGlobalConfig(config.GlobalConfigPath(), logger)
	if err != nil {
		return err
	}
	toolConfig, err := cfg.ResolveToolConfiguration(global.Tools)
	if err != nil {
		return err
	}

	var settingsRepo interfaces.SettingsRepository
	if storage == "mongo" {
		db, err := database.NewMongoDB(cfg.MongoURI, database.DefaultDatabase, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer db.Disconnect(context.Background())
		settingsRepo = repositoriesMongo.NewMongoSettingsRepository(db.Collection(repositoriesMongo.SettingsCollection))
	} else {
		settingsRepo, err = repositoriesJson.NewJSONSettingsRepository(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize settings repository: %w", err)
		}
	}
	settingsService := services.NewSettingsService(settingsRepo, logger)

	bus := events.NewBus()
	defer bus.Close()
	runner := services.NewRunner(bus, logger)

	clients := integrations.NewOllamaClientFactory(integrations.DefaultRequestTimeout, logger)
	conn := services.NewConnectionService(clients, logger)
	state := services.NewAppState(conn, cfg.OllamaHost, defaults.SystemPrompts(), logger)

	settings, err := settingsService.Load(context.Background())
	if err != nil {
		logger.Warn("Failed to load settings, starting fresh", zap.Error(err))
	}
	state.Restore(settings)

	finder, err := files.NewFinder(logger)
	if err != nil {
		return err
	}
	watcher, err := files.NewWatcher(finder, logger)
	if err != nil {
		return fmt.Errorf("failed to start directory watcher: %w", err)
	}
	defer watcher.Close()
	thumbs := thumbnails.NewThumbnailer(thumbnails.DefaultCacheDir(), global.ThumbnailSize, global.ThumbnailWorkers, logger)

	toolFactory := tools.NewToolFactory(finder, toolConfig)
	agentDefs := defaults.DefaultAgents()
	agentTools := make(map[entities.AgentKind][]entities.Tool, len(agentDefs))
	for _, def := range agentDefs {
		created, err := toolFactory.CreateTools(def.Tools, logger)
		if err != nil {
			return fmt.Errorf("failed to create tools for %s: %w", def.Name, err)
		}
		agentTools[def.Kind] = created
	}

	dispatcher := services.NewDispatcher(bus, state, runner, logger)
	app := tui.NewApp(dispatcher, state, bus, agentDefs, logger)

	dispatcher.Register(app.Components()...)
	dispatcher.Register(
		agents.NewChatAgent(entities.AgentChat, state, clients, bus, runner, agentTools[entities.AgentChat], logger),
		agents.NewChatAgent(entities.AgentWebScrape, state, clients, bus, runner, agentTools[entities.AgentWebScrape], logger),
		agents.NewImageAgent(state, clients, bus, runner, agentTools[entities.AgentImages], logger),
		agents.NewLabeler(state, clients, runner, logger),
		services.NewDirectoryService(state, finder, watcher, thumbs, runner, logger),
	)
	dispatcher.SetRenderContext(app.RenderContext())

	unsubscribe := events.ForwardToolCalls(bus)
	defer unsubscribe()

	runner.Spawn(services.Task{Name: "watch", Run: watcher.Run})
	runner.Spawn(conn.PollTask(cfg.PollInterval))

	bus.Send(events.ServerURLChanged{URL: state.ServerURL()})
	bus.Send(events.AgentSelected{Agent: state.ActiveAgent()})
	for _, dir := range state.Directories() {
		bus.Send(events.DirectoryPicked{Path: dir.Path})
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := p.Run()

	runner.Stop()
	if err := settingsService.Save(context.Background(), state.Settings()); err != nil {
		logger.Error("Failed to save settings", zap.Error(err))
	}
	return runErr
}

// newLogger writes to a file under the data dir since the terminal belongs to the UI.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logDir := filepath.Join(cfg.DataDir, ".deskimager")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logConfig.OutputPaths = []string{filepath.Join(logDir, "deskimager.log")}
	logConfig.ErrorOutputPaths = []string{filepath.Join(logDir, "deskimager.log")}
	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
