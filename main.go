package main

import (
	"context"
	"embed"
	"fmt"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"omnichat/internal/database"
	"omnichat/internal/events"
	"omnichat/internal/services"
	"omnichat/internal/utils"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {

	app := NewApp()

	if err := utils.LoadEnv(); err != nil && database.IsDevelopment() {
		log.Printf("no .env loaded: %v", err)
	}

	db, err := database.Init(database.Config{
		LogLevel: logger.Warn,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}

	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}

	// Create each service
	keyringService := services.NewKeyringService()
	dbService := services.NewDbServices(db)
	pipeline := services.NewSendPipelineService(dbService.Sessions, dbService.AppSettings, keyringService)

	app.Sessions = dbService.Sessions
	app.Settings = dbService.AppSettings
	app.Pipeline = pipeline

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "OmniChat",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "OmniChat",
		},
		BackgroundColour: &options.RGBA{R: 52, G: 53, B: 65, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
			events.EnableRuntimeEmitter()
			dbService.StartDbServices(ctx)
			keyringService.Startup()

			if err := pipeline.Startup(ctx); err != nil {
				fmt.Println("Error starting send pipeline:", err)
			}
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			keyringService,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
