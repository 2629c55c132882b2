package files

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

// ImagePattern is the allow-list of image files, matched against lowercased base names.
const ImagePattern = "*.{png,jpg,jpeg}"

// Finder locates image files on disk.
type Finder struct {
	matcher glob.Glob
	logger  *zap.Logger
}

func NewFinder(logger *zap.Logger) (*Finder, error) {
	matcher, err := glob.Compile(ImagePattern)
	if err != nil {
		return nil, err
	}
	return &Finder{matcher: matcher, logger: logger}, nil
}

func (f *Finder) IsImage(path string) bool {
	return f.matcher.Match(strings.ToLower(filepath.Base(path)))
}

// Find walks root and returns every image below it in lexical order. Unreadable entries
// are skipped.
func (f *Finder) Find(ctx context.Context, root string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			f.logger.Debug("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			if path == root {
				return err
			}
			return nil
		}
		if d.Type().IsRegular() && f.IsImage(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// List returns the images directly inside dir.
func (f *Finder) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if e.Type().IsRegular() && f.IsImage(e.Name()) {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	return images, nil
}

var _ interfaces.ImageFinder = (*Finder)(nil)
