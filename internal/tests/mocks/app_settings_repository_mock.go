package mocks

import (
	"context"

	"omnichat/internal/models"
)

type AppSettingsRepositoryMock struct {
	GetFunc  func(ctx context.Context) (*models.AppSettings, error)
	SaveFunc func(ctx context.Context, settings *models.AppSettings) error
}

func (m *AppSettingsRepositoryMock) Get(ctx context.Context) (*models.AppSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	defaults := models.DefaultAppSettings()
	return &defaults, nil
}

func (m *AppSettingsRepositoryMock) Save(ctx context.Context, settings *models.AppSettings) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, settings)
	}
	return nil
}
