package agents

import (
	"context"
	"slices"
	"sync"

	"github.com/drujensen/deskimager/internal/domain/entities"

	"github.com/google/uuid"
)

// Sweep accumulates the results of asking the vision model about each image in turn.
// Images are visited in the order they were given.
type Sweep struct {
	ID       string
	Question string

	mu        sync.Mutex
	remaining []entities.ImageRef
	found     []entities.ImageRef
}

func NewSweep(question string, images []entities.ImageRef) *Sweep {
	return &Sweep{
		ID:        uuid.New().String(),
		Question:  question,
		remaining: slices.Clone(images),
	}
}

// Next pops the next image to check.
func (s *Sweep) Next() (entities.ImageRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.remaining) == 0 {
		return entities.ImageRef{}, false
	}
	img := s.remaining[0]
	s.remaining = s.remaining[1:]
	return img, true
}

func (s *Sweep) Record(img entities.ImageRef, match bool) {
	if !match {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.found = append(s.found, img)
}

func (s *Sweep) Remaining() []entities.ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.remaining)
}

func (s *Sweep) Found() []entities.ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.found)
}

// Sweeper holds at most one running sweep. Starting another cancels the current one and
// replaces its accumulator.
type Sweeper struct {
	mu      sync.Mutex
	current *Sweep
	cancel  context.CancelFunc
}

func (s *Sweeper) Begin(ctx context.Context, question string, images []entities.ImageRef) (context.Context, *Sweep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.current = NewSweep(question, images)
	s.cancel = cancel
	return ctx, s.current
}

// Current returns the running sweep or nil.
func (s *Sweeper) Current() *Sweep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Finish releases sw if it is still the current sweep.
func (s *Sweeper) Finish(sw *Sweep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != sw {
		return
	}
	s.cancel()
	s.current = nil
	s.cancel = nil
}

func (s *Sweeper) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.current = nil
	s.cancel = nil
}
