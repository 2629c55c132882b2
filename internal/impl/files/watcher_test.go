package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drujensen/deskimager/internal/domain/events"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForChange(t *testing.T, bus *events.Bus, match func(events.FilesChanged) bool) events.FilesChanged {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, ev := range bus.Drain() {
			if changed, ok := ev.(events.FilesChanged); ok && match(changed) {
				return changed
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("timed out waiting for FilesChanged")
	return events.FilesChanged{}
}

func TestWatcher_ReportsAddedAndRemovedImages(t *testing.T) {
	root := t.TempDir()
	finder := newFinder(t)
	w, err := NewWatcher(finder, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))

	bus := events.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, bus)

	img := filepath.Join(root, "new.png")
	writeFile(t, img)
	added := waitForChange(t, bus, func(c events.FilesChanged) bool { return len(c.Added) > 0 })
	assert.Equal(t, root, added.Dir)
	assert.Equal(t, []string{img}, added.Added)

	require.NoError(t, os.Remove(img))
	removed := waitForChange(t, bus, func(c events.FilesChanged) bool { return len(c.Removed) > 0 })
	assert.Equal(t, []string{img}, removed.Removed)
}

func TestWatcher_IgnoresNonImages(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(newFinder(t), zap.NewNop())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(root))

	changed, ok := w.translate(fsnotifyCreate(filepath.Join(root, "notes.txt")))
	assert.False(t, ok)
	assert.Empty(t, changed.Added)

	_, ok = w.translate(fsnotifyCreate(filepath.Join(t.TempDir(), "elsewhere.png")))
	assert.False(t, ok, "paths outside watched roots are ignored")
}

func TestWatcher_UnwatchForgetsRoot(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(newFinder(t), zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))
	require.NoError(t, w.Watch(root))
	require.NoError(t, w.Unwatch(root))

	assert.Equal(t, "", w.rootOf(filepath.Join(root, "a.png")))
	assert.NoError(t, w.Unwatch(root))
}

func fsnotifyCreate(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Create}
}
