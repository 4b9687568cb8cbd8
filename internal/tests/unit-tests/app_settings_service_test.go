package unit_tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"omnichat/internal/models"
	"omnichat/internal/services"
	"omnichat/internal/tests/mocks"
)

func TestAppSettingsService_GetReturnsDefaultsWhenUnset(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})
	svc.Startup(context.Background())

	settings, err := svc.Get()
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderGemini, settings.Provider)
	assert.Equal(t, "gemini-2.5-flash", settings.ModelName)
	assert.Equal(t, 0.7, settings.Temperature)
	assert.Equal(t, "User", settings.UserName)
}

func TestAppSettingsService_UpdatePersistsValidSettings(t *testing.T) {
	var saved *models.AppSettings
	repo := &mocks.AppSettingsRepositoryMock{
		SaveFunc: func(ctx context.Context, settings *models.AppSettings) error {
			saved = settings
			return nil
		},
	}
	svc := services.NewAppSettingsService(repo)

	updated, err := svc.Update(models.AppSettings{
		Provider:          models.ProviderOpenAI,
		ModelName:         "  gpt-4o  ",
		SystemInstruction: "Be brief.",
		Temperature:       1.2,
		UserName:          "Alice",
	})
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, "gpt-4o", updated.ModelName)
	assert.Equal(t, models.ProviderOpenAI, saved.Provider)
	assert.Equal(t, 1.2, saved.Temperature)
}

func TestAppSettingsService_UpdateRejectsUnknownProvider(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})

	settings := models.DefaultAppSettings()
	settings.Provider = "grok"
	_, err := svc.Update(settings)
	assert.Error(t, err)
}

func TestAppSettingsService_UpdateRejectsTemperatureOutOfRange(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})

	for _, temp := range []float64{-0.1, 2.1} {
		settings := models.DefaultAppSettings()
		settings.Temperature = temp
		_, err := svc.Update(settings)
		assert.Error(t, err, "temperature %v", temp)
	}
}

func TestAppSettingsService_UpdateRejectsEmptyModelName(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})

	settings := models.DefaultAppSettings()
	settings.ModelName = "   "
	_, err := svc.Update(settings)
	assert.Error(t, err)
}

func TestAppSettingsService_UpdateDefaultsEmptyUserName(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})

	settings := models.DefaultAppSettings()
	settings.UserName = ""
	updated, err := svc.Update(settings)
	assert.NoError(t, err)
	assert.Equal(t, "User", updated.UserName)
}

func TestAppSettingsService_UpdateSurfacesSaveFailure(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		SaveFunc: func(ctx context.Context, settings *models.AppSettings) error {
			return errors.New("disk full")
		},
	}
	svc := services.NewAppSettingsService(repo)

	_, err := svc.Update(models.DefaultAppSettings())
	assert.Error(t, err)
}
