package models

import "time"

// Theme selects the TUI color palette.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// ClockFormat selects how times of day are displayed.
type ClockFormat string

const (
	Clock12h ClockFormat = "12h"
	Clock24h ClockFormat = "24h"
)

// LogConfig holds console logger settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// GlobalConfig holds system-wide settings read from .taskconfig via Viper.
type GlobalConfig struct {
	StorageKey    string        `yaml:"storage_key" mapstructure:"storage_key"`
	DueSoonWindow time.Duration `yaml:"due_soon_window" mapstructure:"due_soon_window"`
	Clock         ClockFormat   `yaml:"clock" mapstructure:"clock"`
	Theme         Theme         `yaml:"theme" mapstructure:"theme"`
	Log           LogConfig     `yaml:"log" mapstructure:"log"`
	EventsEnabled bool          `yaml:"events_enabled" mapstructure:"events_enabled"`
}

// UIPreferences holds choices made inside the TUI that outlive a session.
type UIPreferences struct {
	Theme Theme `yaml:"theme"`
}
