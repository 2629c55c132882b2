package services

import (
	"context"
	"time"

	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second
	probeTimeout        = 5 * time.Second
	listTimeout         = 15 * time.Second
)

// ConnectionService builds the background tasks that talk to the inference server on
// behalf of the shared state.
type ConnectionService struct {
	factory interfaces.InferenceClientFactory
	logger  *zap.Logger
}

func NewConnectionService(factory interfaces.InferenceClientFactory, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		factory: factory,
		logger:  logger,
	}
}

// ProbeTask checks whether url answers and reports the result.
func (c *ConnectionService) ProbeTask(url string) Task {
	return Task{Name: "probe", Run: func(ctx context.Context, emit events.Emitter) {
		client, err := c.factory.NewClient(url)
		if err != nil {
			emit.Send(events.ServerStatusChanged{URL: url, Reachable: false, Err: err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		if err := client.Probe(ctx); err != nil {
			c.logger.Debug("Inference server not reachable", zap.String("url", url), zap.Error(err))
			emit.Send(events.ServerStatusChanged{URL: url, Reachable: false, Err: err.Error()})
			return
		}
		emit.Send(events.ServerStatusChanged{URL: url, Reachable: true})
	}}
}

// RefreshModelsTask lists the models at url. Failures are logged only.
func (c *ConnectionService) RefreshModelsTask(url string) Task {
	return Task{Name: "refresh-models", Run: func(ctx context.Context, emit events.Emitter) {
		client, err := c.factory.NewClient(url)
		if err != nil {
			c.logger.Warn("Invalid server URL", zap.String("url", url), zap.Error(err))
			return
		}

		ctx, cancel := context.WithTimeout(ctx, listTimeout)
		defer cancel()

		models, err := client.ListModels(ctx)
		if err != nil {
			c.logger.Warn("Failed to list models", zap.String("url", url), zap.Error(err))
			return
		}
		emit.Send(events.ModelsUpdated{URL: url, Models: models})
	}}
}

// PollTask asks for a probe every interval until cancelled.
func (c *ConnectionService) PollTask(interval time.Duration) Task {
	return Task{Name: "poll", Run: func(ctx context.Context, emit events.Emitter) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit.Send(events.ProbeRequested{})
			}
		}
	}}
}
