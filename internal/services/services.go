package services

import (
	"context"

	"gorm.io/gorm"

	"omnichat/internal/repositories"
)

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	AppSettings AppSettingsService
	Sessions    SessionStoreService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB) *DbServices {
	kvRepo := repositories.NewKVRepository(db)
	settingsRepo := repositories.NewAppSettingsRepository(kvRepo)
	sessionRepo := repositories.NewSessionListRepository(kvRepo)

	return &DbServices{
		AppSettings: NewAppSettingsService(settingsRepo),
		Sessions:    NewSessionStoreService(sessionRepo),
	}
}

// StartDbServices hands the runtime context to every db-backed service.
func (s *DbServices) StartDbServices(ctx context.Context) {
	s.AppSettings.Startup(ctx)
	s.Sessions.Startup(ctx)
}
