package thumbnails

import (
	"context"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSize    = 160
	DefaultWorkers = 4
)

// Thumbnailer decodes images, scales them into a square bounding box and caches the
// result as PNG under a mirror of the source path.
type Thumbnailer struct {
	cacheDir string
	size     int
	sem      *semaphore.Weighted
	logger   *zap.Logger
}

func NewThumbnailer(cacheDir string, size int, workers int64, logger *zap.Logger) *Thumbnailer {
	if size <= 0 {
		size = DefaultSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Thumbnailer{
		cacheDir: cacheDir,
		size:     size,
		sem:      semaphore.NewWeighted(workers),
		logger:   logger,
	}
}

// DefaultCacheDir is the per-user cache location for thumbnails.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "deskimager", "thumbnails")
}

// Thumbnails returns previews for paths in input order. Files that fail to decode are
// skipped.
func (t *Thumbnailer) Thumbnails(ctx context.Context, paths []string) []entities.Thumbnail {
	results := make([]*entities.Thumbnail, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if err := t.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer t.sem.Release(1)
			img, err := t.Thumbnail(path)
			if err != nil {
				t.logger.Debug("Failed to create thumbnail", zap.String("path", path), zap.Error(err))
				return
			}
			results[i] = &entities.Thumbnail{Path: path, Image: img}
		}(i, path)
	}
	wg.Wait()

	thumbs := make([]entities.Thumbnail, 0, len(paths))
	for _, r := range results {
		if r != nil {
			thumbs = append(thumbs, *r)
		}
	}
	return thumbs
}

// Thumbnail returns the cached preview when it is newer than the source, otherwise
// renders and caches a new one.
func (t *Thumbnailer) Thumbnail(path string) (image.Image, error) {
	src, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	cached := t.cachePath(path)
	if info, err := os.Stat(cached); err == nil && !info.ModTime().Before(src.ModTime()) {
		if img, err := readPNG(cached); err == nil {
			return img, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	thumb := Scale(decoded, t.size)

	if err := writePNG(cached, thumb); err != nil {
		t.logger.Debug("Failed to cache thumbnail", zap.String("path", cached), zap.Error(err))
	}
	return thumb, nil
}

// Evict removes every cached thumbnail for files below dir.
func (t *Thumbnailer) Evict(dir string) error {
	return os.RemoveAll(t.cachePath(dir))
}

func (t *Thumbnailer) cachePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	rel := strings.TrimPrefix(abs, filepath.VolumeName(abs))
	return filepath.Join(t.cacheDir, rel)
}

// Scale fits src into a size x size box keeping its aspect ratio.
func Scale(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if w <= size && h <= size {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
		return dst
	}
	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

var _ interfaces.Thumbnailer = (*Thumbnailer)(nil)
