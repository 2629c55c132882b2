package repositories_json

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonSettingsRepository_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewJSONSettingsRepository(dir)
	require.NoError(t, err)

	_, err = repo.LoadSettings(ctx, entities.SettingsKey)
	assert.True(t, errors.Is(err, errors.KindNotFound))

	settings := &entities.Settings{
		ServerURL:   "http://127.0.0.1:11434",
		ActiveAgent: "images",
		Directories: []entities.Directory{{
			Path:  "/pics",
			Files: []entities.ImageFile{{Path: "/pics/cat.png", Labels: []string{"cat"}}, {Path: "/pics/dog.png"}},
		}},
		SystemPrompts: map[string]string{"chat": "be brief"},
	}
	require.NoError(t, repo.SaveSettings(ctx, entities.SettingsKey, settings))

	reopened, err := NewJSONSettingsRepository(dir)
	require.NoError(t, err)
	loaded, err := reopened.LoadSettings(ctx, entities.SettingsKey)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	_, err = os.Stat(filepath.Join(dir, ".deskimager", "settings.json"))
	assert.NoError(t, err)
}

func TestJsonSettingsRepository_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo, err := NewJSONSettingsRepository(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.SaveSettings(ctx, "a", &entities.Settings{ServerURL: "http://a"}))
	require.NoError(t, repo.SaveSettings(ctx, "b", &entities.Settings{ServerURL: "http://b"}))

	a, err := repo.LoadSettings(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "http://a", a.ServerURL)
}

func TestJsonSettingsRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".deskimager", "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONSettingsRepository(dir)
	assert.True(t, errors.Is(err, errors.KindInternal))
}
