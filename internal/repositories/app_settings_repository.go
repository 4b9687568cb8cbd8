package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"omnichat/internal/models"
)

// SettingsKey is the storage key the settings blob lives under.
const SettingsKey = "omnichat_settings"

type AppSettingsRepository interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, settings *models.AppSettings) error
}

type appSettingsRepository struct {
	kv KVRepository
}

func NewAppSettingsRepository(kv KVRepository) AppSettingsRepository {
	return &appSettingsRepository{kv: kv}
}

func (r *appSettingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	raw, ok, err := r.kv.Get(ctx, SettingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Return default settings if not found
		defaults := models.DefaultAppSettings()
		return &defaults, nil
	}

	var settings models.AppSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

func (r *appSettingsRepository) Save(ctx context.Context, settings *models.AppSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.kv.Set(ctx, SettingsKey, string(data))
}
