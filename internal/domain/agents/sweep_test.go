package agents

import (
	"context"
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func refs(paths ...string) []entities.ImageRef {
	out := make([]entities.ImageRef, len(paths))
	for i, p := range paths {
		out[i] = entities.NewImageRef(p)
	}
	return out
}

func TestSweep_VisitsInOrder(t *testing.T) {
	sw := NewSweep("Is a cat on this picture?", refs("/a.png", "/b.png"))

	first, ok := sw.Next()
	assert.True(t, ok)
	assert.Equal(t, "/a.png", first.Path)
	sw.Record(first, true)

	second, _ := sw.Next()
	sw.Record(second, false)

	_, ok = sw.Next()
	assert.False(t, ok)
	assert.Equal(t, refs("/a.png"), sw.Found())
}

func TestSweeper_NewSweepReplacesPending(t *testing.T) {
	var sweeper Sweeper
	firstCtx, first := sweeper.Begin(context.Background(), "q1", refs("/A.png", "/B.png", "/C.png"))
	first.Next()

	secondCtx, second := sweeper.Begin(context.Background(), "q2", refs("/D.png", "/E.png"))

	assert.Error(t, firstCtx.Err())
	assert.NoError(t, secondCtx.Err())
	assert.Same(t, second, sweeper.Current())
	assert.Equal(t, refs("/D.png", "/E.png"), sweeper.Current().Remaining())
	assert.Empty(t, sweeper.Current().Found())

	sweeper.Finish(first)
	assert.Same(t, second, sweeper.Current())

	sweeper.Finish(second)
	assert.Nil(t, sweeper.Current())
	assert.Error(t, secondCtx.Err())
}
