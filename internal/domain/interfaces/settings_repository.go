package interfaces

import (
	"context"

	"github.com/drujensen/deskimager/internal/domain/entities"
)

type SettingsRepository interface {
	// LoadSettings returns a NotFound error when nothing is stored under key.
	LoadSettings(ctx context.Context, key string) (*entities.Settings, error)
	SaveSettings(ctx context.Context, key string, settings *entities.Settings) error
}
