package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
)

// DirectoryService scans picked directories, keeps them watched and produces thumbnails.
type DirectoryService struct {
	state   StateView
	finder  interfaces.ImageFinder
	watcher interfaces.DirectoryWatcher
	thumbs  interfaces.Thumbnailer
	spawner Spawner
	logger  *zap.Logger
}

func NewDirectoryService(state StateView, finder interfaces.ImageFinder, watcher interfaces.DirectoryWatcher, thumbs interfaces.Thumbnailer, spawner Spawner, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		state:   state,
		finder:  finder,
		watcher: watcher,
		thumbs:  thumbs,
		spawner: spawner,
		logger:  logger,
	}
}

func (s *DirectoryService) Name() string {
	return "directories"
}

func (s *DirectoryService) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.DirectoryPicked:
		path, err := ExpandPath(e.Path)
		if err != nil {
			s.logger.Warn("Ignoring directory", zap.String("path", e.Path), zap.Error(err))
			return
		}
		s.spawner.Spawn(s.scanTask(path, s.state.ScanGeneration(path)))

	case events.DirectoryScanned:
		if !CurrentScan(s.state, e) {
			return
		}
		if s.watcher != nil {
			if err := s.watcher.Watch(e.Path); err != nil {
				s.logger.Warn("Failed to watch directory", zap.String("path", e.Path), zap.Error(err))
			}
		}
		s.spawner.Spawn(s.thumbnailTask(e.Path, e.Files))

	case events.FilesChanged:
		if len(e.Added) > 0 {
			s.spawner.Spawn(s.thumbnailTask(e.Dir, e.Added))
		}

	case events.DirectoryRemoved:
		if s.watcher != nil {
			if err := s.watcher.Unwatch(e.Path); err != nil {
				s.logger.Debug("Failed to unwatch directory", zap.String("path", e.Path), zap.Error(err))
			}
		}
		if err := s.thumbs.Evict(e.Path); err != nil {
			s.logger.Warn("Failed to evict thumbnails", zap.String("path", e.Path), zap.Error(err))
		}
	}
}

func (s *DirectoryService) scanTask(path string, gen uint64) Task {
	return Task{Name: "scan-directory", Run: func(ctx context.Context, emit events.Emitter) {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			emit.Send(events.Diagnostic{Source: s.Name(), Message: "not a directory: " + path})
			return
		}
		files, err := s.finder.Find(ctx, path)
		if err != nil {
			s.logger.Error("Failed to scan directory", zap.String("path", path), zap.Error(err))
			return
		}
		s.logger.Info("Scanned directory", zap.String("path", path), zap.Int("images", len(files)))
		emit.Send(events.DirectoryScanned{Path: path, Generation: gen, Files: files})
	}}
}

func (s *DirectoryService) thumbnailTask(dir string, files []string) Task {
	return Task{Name: "thumbnails", Run: func(ctx context.Context, emit events.Emitter) {
		thumbs := s.thumbs.Thumbnails(ctx, files)
		if ctx.Err() != nil || len(thumbs) == 0 {
			return
		}
		emit.Send(events.ThumbnailsReady{Dir: dir, Thumbnails: thumbs})
	}}
}

// ExpandPath resolves a leading ~ and returns a clean absolute path.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", os.ErrInvalid
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
