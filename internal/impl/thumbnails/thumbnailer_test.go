package thumbnails

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestScale_KeepsAspectRatio(t *testing.T) {
	wide := Scale(image.NewRGBA(image.Rect(0, 0, 800, 400)), 160)
	assert.Equal(t, 160, wide.Bounds().Dx())
	assert.Equal(t, 80, wide.Bounds().Dy())

	tall := Scale(image.NewRGBA(image.Rect(0, 0, 100, 1000)), 160)
	assert.Equal(t, 16, tall.Bounds().Dx())
	assert.Equal(t, 160, tall.Bounds().Dy())

	small := Scale(image.NewRGBA(image.Rect(0, 0, 20, 10)), 160)
	assert.Equal(t, image.Rect(0, 0, 20, 10), small.Bounds())
}

func TestThumbnails_OrderSkipsAndCaches(t *testing.T) {
	src := t.TempDir()
	cache := t.TempDir()
	a := filepath.Join(src, "a.png")
	b := filepath.Join(src, "sub", "b.png")
	broken := filepath.Join(src, "broken.png")
	writeTestPNG(t, a, 320, 320)
	writeTestPNG(t, b, 40, 20)
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))

	th := NewThumbnailer(cache, 160, 2, zap.NewNop())
	thumbs := th.Thumbnails(context.Background(), []string{a, broken, b})

	require.Len(t, thumbs, 2)
	assert.Equal(t, a, thumbs[0].Path)
	assert.Equal(t, 160, thumbs[0].Image.Bounds().Dx())
	assert.Equal(t, b, thumbs[1].Path)

	_, err := os.Stat(th.cachePath(a))
	assert.NoError(t, err, "thumbnail is cached")

	again, err := th.Thumbnail(a)
	require.NoError(t, err)
	assert.Equal(t, thumbs[0].Image.Bounds(), again.Bounds())
}

func TestEvict_RemovesCachedTree(t *testing.T) {
	src := t.TempDir()
	cache := t.TempDir()
	a := filepath.Join(src, "a.png")
	writeTestPNG(t, a, 10, 10)

	th := NewThumbnailer(cache, 0, 0, zap.NewNop())
	_, err := th.Thumbnail(a)
	require.NoError(t, err)

	require.NoError(t, th.Evict(src))
	_, err = os.Stat(th.cachePath(a))
	assert.True(t, os.IsNotExist(err))
}

func TestThumbnails_CancelledContext(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.png")
	writeTestPNG(t, a, 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	thumbs := NewThumbnailer(t.TempDir(), 0, 1, zap.NewNop()).Thumbnails(ctx, []string{a})
	assert.Empty(t, thumbs)
}
