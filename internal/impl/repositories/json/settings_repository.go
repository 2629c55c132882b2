package repositories_json

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
)

// JsonSettingsRepository keeps every settings key in a single JSON document on disk.
type JsonSettingsRepository struct {
	filePath string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewJSONSettingsRepository(dataDir string) (interfaces.SettingsRepository, error) {
	filePath := filepath.Join(dataDir, ".deskimager", "settings.json")
	repo := &JsonSettingsRepository{
		filePath: filePath,
		data:     map[string]json.RawMessage{},
	}

	if err := repo.load(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *JsonSettingsRepository) load() error {
	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.InternalErrorf("failed to read settings.json: %v", err)
	}

	stored := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return errors.InternalErrorf("failed to unmarshal settings.json: %v", err)
	}

	r.data = stored
	return nil
}

func (r *JsonSettingsRepository) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return errors.InternalErrorf("failed to marshal settings: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return errors.InternalErrorf("failed to create directory: %v", err)
	}

	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.InternalErrorf("failed to write settings.json: %v", err)
	}
	if err := os.Rename(tmp, r.filePath); err != nil {
		return errors.InternalErrorf("failed to replace settings.json: %v", err)
	}

	return nil
}

func (r *JsonSettingsRepository) LoadSettings(ctx context.Context, key string) (*entities.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.data[key]
	if !ok {
		return nil, errors.NotFoundErrorf("settings %q not found", key)
	}

	var settings entities.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, errors.InternalErrorf("failed to unmarshal settings %q: %v", key, err)
	}
	return &settings, nil
}

func (r *JsonSettingsRepository) SaveSettings(ctx context.Context, key string, settings *entities.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return errors.InternalErrorf("failed to marshal settings %q: %v", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = raw
	return r.save()
}
