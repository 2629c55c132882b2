package services

import (
	"context"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
)

type SettingsService struct {
	repo   interfaces.SettingsRepository
	logger *zap.Logger
}

func NewSettingsService(repo interfaces.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
	}
}

// Load returns the stored settings, or nil when nothing has been saved yet.
func (s *SettingsService) Load(ctx context.Context) (*entities.Settings, error) {
	settings, err := s.repo.LoadSettings(ctx, entities.SettingsKey)
	if errors.Is(err, errors.KindNotFound) {
		s.logger.Info("No stored settings, starting fresh")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings *entities.Settings) error {
	if settings == nil {
		return errors.ValidationErrorf("settings are required")
	}
	if err := s.repo.SaveSettings(ctx, entities.SettingsKey, settings); err != nil {
		s.logger.Error("Failed to save settings", zap.Error(err))
		return err
	}
	return nil
}
