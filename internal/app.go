// Package internal provides the App struct that wires all components of
// taskmaster together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/taskmaster/internal/cli"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/internal/observability"
	"github.com/valter-silva-au/taskmaster/internal/storage"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// eventLogFile is the JSON Lines activity log under the base path.
const eventLogFile = ".tm_events.jsonl"

// App holds all service dependencies of taskmaster.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Logging
	Logger *log.Logger

	// Storage layer
	StateStore storage.StateStore
	Prefs      storage.PreferencesManager

	// Core services
	Store core.TaskStore

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// .taskconfig and the state file (see ResolveBasePath).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Logger = observability.NewLogger(os.Stderr, observability.LoggerOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// --- Storage layer ---
	app.StateStore = storage.NewStateStore(basePath, cfg.StorageKey)
	app.Prefs = storage.NewPreferencesManager(basePath)

	// --- Observability ---
	var events core.EventLogger
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, eventLogFile))
		if err != nil {
			// Non-fatal: the tracker works without its activity log.
			app.Logger.Warn("event log disabled", "err", err)
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog, logger: app.Logger}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	app.Store = core.NewTaskStore(app.StateStore, core.TaskStoreOpts{
		DueSoonWindow: cfg.DueSoonWindow,
		Events:        events,
	})
	if err := app.Store.Reload(); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Logger.Debug("state loaded", "path", app.StateStore.Path(), "tasks", len(app.Store.Tasks()))

	thresholds := observability.DefaultAlertThresholds()
	thresholds.DueSoonWindow = cfg.DueSoonWindow
	app.AlertEngine = observability.NewAlertEngine(app.Store, thresholds)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.StatePath = app.StateStore.Path()
	cli.Store = app.Store
	cli.Prefs = app.Prefs
	cli.Logger = app.Logger
	cli.ClockFormat = cfg.Clock
	cli.DefaultTheme = cfg.Theme

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			return fmt.Errorf("closing event log: %w", err)
		}
	}
	return nil
}

// ResolveBasePath determines the base directory. It checks the TM_HOME
// environment variable first, then walks up from the current directory
// looking for a .taskconfig file, and finally falls back to the current
// working directory.
func ResolveBasePath() string {
	if home := os.Getenv("TM_HOME"); home != "" {
		return home
	}

	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir

	for {
		if hasTaskConfig(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// hasTaskConfig reports whether dir holds .taskconfig, with or without the
// .yaml extension viper also accepts.
func hasTaskConfig(dir string) bool {
	for _, name := range []string{".taskconfig", ".taskconfig.yaml", ".taskconfig.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log    observability.EventLog
	logger *log.Logger
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	if err := a.log.Write(observability.NewEvent(eventType, data)); err != nil {
		a.logger.Warn("writing event", "type", eventType, "err", err)
		return err
	}
	return nil
}
