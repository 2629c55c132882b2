package files

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports images appearing in or disappearing from watched directory trees.
type Watcher struct {
	watcher *fsnotify.Watcher
	finder  *Finder
	logger  *zap.Logger

	mu    sync.Mutex
	roots map[string][]string
}

func NewWatcher(finder *Finder, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		finder:  finder,
		logger:  logger,
		roots:   make(map[string][]string),
	}, nil
}

// Watch adds root and all its subdirectories. Watching a root twice is a no-op.
func (w *Watcher) Watch(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roots[root]; ok {
		return nil
	}
	dirs, err := w.addTree(root)
	w.roots[root] = dirs
	return err
}

func (w *Watcher) addTree(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("Failed to watch directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func (w *Watcher) Unwatch(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs, ok := w.roots[root]
	if !ok {
		return nil
	}
	delete(w.roots, root)
	for _, d := range dirs {
		if w.watchedElsewhere(d) {
			continue
		}
		if err := w.watcher.Remove(d); err != nil {
			w.logger.Debug("Failed to remove watch", zap.String("path", d), zap.Error(err))
		}
	}
	return nil
}

func (w *Watcher) watchedElsewhere(dir string) bool {
	for _, dirs := range w.roots {
		for _, d := range dirs {
			if d == dir {
				return true
			}
		}
	}
	return false
}

// rootOf returns the longest watched root containing path.
func (w *Watcher) rootOf(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	best := ""
	for root := range w.roots {
		if (path == root || strings.HasPrefix(path, root+string(filepath.Separator))) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

// Run forwards file system events as FilesChanged until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, emit events.Emitter) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if changed, ok := w.translate(ev); ok {
				emit.Send(changed)
			}
		}
	}
}

func (w *Watcher) translate(ev fsnotify.Event) (events.FilesChanged, bool) {
	root := w.rootOf(ev.Name)
	if root == "" {
		return events.FilesChanged{}, false
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		if w.isDir(ev.Name) {
			w.mu.Lock()
			dirs, _ := w.addTree(ev.Name)
			w.roots[root] = append(w.roots[root], dirs...)
			w.mu.Unlock()
			return events.FilesChanged{}, false
		}
		if w.finder.IsImage(ev.Name) {
			return events.FilesChanged{Dir: root, Added: []string{ev.Name}}, true
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if w.finder.IsImage(ev.Name) {
			return events.FilesChanged{Dir: root, Removed: []string{ev.Name}}, true
		}
	}
	return events.FilesChanged{}, false
}

func (w *Watcher) isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

var _ interfaces.DirectoryWatcher = (*Watcher)(nil)
