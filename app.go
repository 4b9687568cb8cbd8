package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"omnichat/internal/models"
	"omnichat/internal/services"
)

// App struct
type App struct {
	ctx      context.Context
	Sessions services.SessionStoreService
	Settings services.AppSettingsService
	Pipeline services.SendPipelineService
	dbClose  func() error
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close database: %v", err))
		} else {
			runtime.LogInfo(ctx, "database closed")
		}
		a.dbClose = nil
	}
}

// NewChat creates a fresh session, makes it active and returns its id.
func (a *App) NewChat() (string, error) {
	if a.Sessions == nil {
		return "", fmt.Errorf("session store not available")
	}
	return a.Sessions.CreateSession(), nil
}

// SelectChat makes the session with the given id active.
func (a *App) SelectChat(id string) {
	if a.Sessions == nil {
		return
	}
	a.Sessions.SelectSession(id)
}

// DeleteChat removes a session. Any response still streaming into it is
// stopped first.
func (a *App) DeleteChat(id string) {
	if a.Sessions == nil {
		return
	}
	if a.Pipeline != nil {
		a.Pipeline.Stop(id)
	}
	a.Sessions.DeleteSession(id)
}

// ListChats returns every session, newest first.
func (a *App) ListChats() ([]models.ChatSession, error) {
	if a.Sessions == nil {
		return nil, fmt.Errorf("session store not available")
	}
	return a.Sessions.Sessions(), nil
}

// CurrentChatID returns the id of the active session.
func (a *App) CurrentChatID() (string, error) {
	if a.Sessions == nil {
		return "", fmt.Errorf("session store not available")
	}
	return a.Sessions.CurrentSessionID(), nil
}

// SendMessage submits user input to a session. The call resolves once the
// response finished streaming; progress arrives through chat events.
func (a *App) SendMessage(sessionID string, text string) error {
	if a.Pipeline == nil {
		return fmt.Errorf("send pipeline not available")
	}
	return a.Pipeline.Send(sessionID, text)
}

// StopResponse cancels the response currently streaming into a session.
func (a *App) StopResponse(sessionID string) {
	if a.Pipeline == nil {
		return
	}
	a.Pipeline.Stop(sessionID)
}

// IsResponding reports whether a response is streaming into the session.
func (a *App) IsResponding(sessionID string) bool {
	if a.Pipeline == nil {
		return false
	}
	return a.Pipeline.Busy(sessionID)
}

// GetAppSettings returns the current application settings
func (a *App) GetAppSettings() (*models.AppSettings, error) {
	if a.Settings == nil {
		return nil, fmt.Errorf("app settings service not available")
	}
	return a.Settings.Get()
}

// UpdateAppSettings replaces the settings and returns the stored value
func (a *App) UpdateAppSettings(settings models.AppSettings) (*models.AppSettings, error) {
	if a.Settings == nil {
		return nil, fmt.Errorf("app settings service not available")
	}
	return a.Settings.Update(settings)
}
