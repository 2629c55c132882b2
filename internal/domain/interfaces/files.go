package interfaces

import (
	"context"

	"github.com/drujensen/deskimager/internal/domain/entities"
)

type ImageFinder interface {
	// Find returns every image below root, recursively.
	Find(ctx context.Context, root string) ([]string, error)
	// List returns the images directly inside dir.
	List(dir string) ([]string, error)
	IsImage(path string) bool
}

type DirectoryWatcher interface {
	Watch(dir string) error
	Unwatch(dir string) error
}

type Thumbnailer interface {
	Thumbnails(ctx context.Context, paths []string) []entities.Thumbnail
	Evict(dir string) error
}
