package cli

import (
	"time"

	"timeledger/internal/api"
	"timeledger/internal/config"
)

// App bundles the dependencies every command handler needs.
type App struct {
	api    *api.API
	config *config.Config
	loc    *time.Location
}

// NewApp creates a new App instance
func NewApp(apiInstance *api.API, cfg *config.Config, loc *time.Location) *App {
	return &App{
		api:    apiInstance,
		config: cfg,
		loc:    loc,
	}
}

// UserID returns the configured user the commands act on behalf of.
func (a *App) UserID() string {
	return a.config.Application.UserID
}
