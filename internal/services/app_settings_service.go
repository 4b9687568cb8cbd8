package services

import (
	"context"
	"errors"
	"strings"

	"omnichat/internal/models"
	"omnichat/internal/repositories"
)

type AppSettingsService interface {
	Startup(ctx context.Context)
	Get() (*models.AppSettings, error)
	Update(settings models.AppSettings) (*models.AppSettings, error)
}

type appSettingsService struct {
	appSettings repositories.AppSettingsRepository
	context     context.Context
}

func NewAppSettingsService(appSettings repositories.AppSettingsRepository) AppSettingsService {
	return &appSettingsService{appSettings: appSettings}
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
}

func (s *appSettingsService) Get() (*models.AppSettings, error) {
	return s.appSettings.Get(context.Background())
}

// Update replaces the whole settings value after validation.
func (s *appSettingsService) Update(settings models.AppSettings) (*models.AppSettings, error) {
	settings.Provider = strings.TrimSpace(settings.Provider)
	settings.ModelName = strings.TrimSpace(settings.ModelName)

	if !models.ValidProvider(settings.Provider) {
		return nil, errors.New("provider must be 'gemini', 'openai', or 'claude'")
	}
	if settings.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if settings.Temperature < 0 || settings.Temperature > 2 {
		return nil, errors.New("temperature must be between 0 and 2")
	}
	if strings.TrimSpace(settings.UserName) == "" {
		settings.UserName = models.DefaultAppSettings().UserName
	}

	if err := s.appSettings.Save(context.Background(), &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}
