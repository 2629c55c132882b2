package services

import (
	"context"
	"fmt"

	"github.com/drujensen/deskimager/internal/domain/events"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of background work. It reports results only through emit.
type Task struct {
	Name string
	Run  func(ctx context.Context, emit events.Emitter)
}

// Spawner starts background tasks.
type Spawner interface {
	Spawn(task Task)
	// SpawnCancelable starts task with its own cancellation.
	SpawnCancelable(task Task) context.CancelFunc
}

// Runner runs each task on its own goroutine and waits for all of them on Stop.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	emit   events.Emitter
	logger *zap.Logger
}

func NewRunner(emit events.Emitter, logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		emit:   emit,
		logger: logger,
	}
}

func (r *Runner) Spawn(task Task) {
	r.start(r.ctx, task)
}

func (r *Runner) SpawnCancelable(task Task) context.CancelFunc {
	ctx, cancel := context.WithCancel(r.ctx)
	r.start(ctx, task)
	return cancel
}

func (r *Runner) start(ctx context.Context, task Task) {
	if r.ctx.Err() != nil {
		r.logger.Debug("Runner stopped, dropping task", zap.String("task", task.Name))
		return
	}
	r.group.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Task panicked", zap.String("task", task.Name), zap.Any("panic", rec))
				err = fmt.Errorf("task %s panicked: %v", task.Name, rec)
			}
		}()
		r.logger.Debug("Task started", zap.String("task", task.Name))
		task.Run(ctx, r.emit)
		return nil
	})
}

// Wait blocks until every task spawned so far has returned.
func (r *Runner) Wait() error {
	return r.group.Wait()
}

// Stop cancels every running task and waits for them.
func (r *Runner) Stop() {
	r.cancel()
	if err := r.group.Wait(); err != nil {
		r.logger.Warn("Background task failed", zap.Error(err))
	}
}

var _ Spawner = (*Runner)(nil)
