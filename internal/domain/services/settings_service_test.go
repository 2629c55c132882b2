package services

import (
	"context"
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) LoadSettings(ctx context.Context, key string) (*entities.Settings, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Settings), args.Error(1)
}

func (m *mockSettingsRepository) SaveSettings(ctx context.Context, key string, settings *entities.Settings) error {
	return m.Called(ctx, key, settings).Error(0)
}

func TestSettingsService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("stored settings", func(t *testing.T) {
		repo := new(mockSettingsRepository)
		stored := &entities.Settings{ServerURL: "http://h:1"}
		repo.On("LoadSettings", ctx, entities.SettingsKey).Return(stored, nil)

		settings, err := NewSettingsService(repo, zap.NewNop()).Load(ctx)

		assert.NoError(t, err)
		assert.Equal(t, stored, settings)
		repo.AssertExpectations(t)
	})

	t.Run("nothing stored", func(t *testing.T) {
		repo := new(mockSettingsRepository)
		repo.On("LoadSettings", ctx, entities.SettingsKey).Return(nil, errors.NotFoundErrorf("settings not found"))

		settings, err := NewSettingsService(repo, zap.NewNop()).Load(ctx)

		assert.NoError(t, err)
		assert.Nil(t, settings)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(mockSettingsRepository)
		repo.On("LoadSettings", ctx, entities.SettingsKey).Return(nil, errors.InternalErrorf("disk on fire"))

		_, err := NewSettingsService(repo, zap.NewNop()).Load(ctx)

		assert.Error(t, err)
	})
}

func TestSettingsService_Save(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSettingsRepository)
	settings := &entities.Settings{ServerURL: "http://h:1"}
	repo.On("SaveSettings", ctx, entities.SettingsKey, settings).Return(nil)
	service := NewSettingsService(repo, zap.NewNop())

	assert.NoError(t, service.Save(ctx, settings))
	assert.True(t, errors.Is(service.Save(ctx, nil), errors.KindValidation))
	repo.AssertExpectations(t)
}
