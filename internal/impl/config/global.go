package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// GlobalConfig holds user preferences that are edited by hand rather than through the UI.
type GlobalConfig struct {
	ThumbnailSize    int                          `json:"thumbnail_size"`
	ThumbnailWorkers int64                        `json:"thumbnail_workers"`
	Tools            map[string]map[string]string `json:"tools"`
}

func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ThumbnailSize:    160,
		ThumbnailWorkers: 4,
		Tools:            map[string]map[string]string{},
	}
}

// GlobalConfigPath is ~/.config/deskimager/deskimager.json.
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "deskimager", "deskimager.json")
}

// LoadGlobalConfig reads path, using defaults when the file is missing or unparsable.
func LoadGlobalConfig(path string, logger *zap.Logger) (*GlobalConfig, error) {
	config := DefaultGlobalConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Global config file does not exist, using defaults", zap.String("path", path))
			return config, nil
		}
		return nil, fmt.Errorf("failed to read global config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		logger.Warn("Failed to parse global config file, using defaults", zap.Error(err), zap.String("path", path))
		return DefaultGlobalConfig(), nil
	}
	if config.Tools == nil {
		config.Tools = map[string]map[string]string{}
	}

	logger.Debug("Loaded global config", zap.String("path", path))
	return config, nil
}

func SaveGlobalConfig(path string, config *GlobalConfig, logger *zap.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.Debug("Saved global config", zap.String("path", path))
	return nil
}
