package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/internal/observability"
	"github.com/valter-silva-au/taskmaster/internal/storage"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath  string
	StatePath string
	Store     core.TaskStore
	Prefs     storage.PreferencesManager
	Logger    *log.Logger
)

// Display settings from .taskconfig.
var (
	ClockFormat  = models.Clock12h
	DefaultTheme = models.ThemeSystem
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
)

// nowFunc is the clock used for parsing times of day; tests pin it.
var nowFunc = time.Now

func logger() *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger
}
