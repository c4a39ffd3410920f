// Package core contains the business logic of taskmaster: the task store,
// filtering and deadline classification, time parsing and formatting,
// title validation, and configuration loading.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// DefaultStorageKey names the persisted state record.
const DefaultStorageKey = "todo-storage"

// validStorageKeyPattern keeps the storage key usable as a file name stem.
var validStorageKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ConfigurationManager defines the interface for loading and validating the
// global configuration from the .taskconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .taskconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		StorageKey:    DefaultStorageKey,
		DueSoonWindow: DefaultDueSoonWindow,
		Clock:         models.Clock12h,
		Theme:         models.ThemeSystem,
		Log: models.LogConfig{
			Level:  "warn",
			Format: "text",
		},
		EventsEnabled: true,
	}
}

// LoadGlobalConfig reads the .taskconfig file from the base path using Viper.
// If the file does not exist, defaults are returned. TM_* environment
// variables (e.g. TM_LOG_LEVEL) override file values.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".taskconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("storage.key", cfg.StorageKey)
	v.SetDefault("deadlines.due_soon_window", cfg.DueSoonWindow.String())
	v.SetDefault("display.clock", string(cfg.Clock))
	v.SetDefault("display.theme", string(cfg.Theme))
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("events.enabled", cfg.EventsEnabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .taskconfig: %w", err)
		}
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.StorageKey = v.GetString("storage.key")
	cfg.Clock = models.ClockFormat(strings.ToLower(v.GetString("display.clock")))
	cfg.Theme = models.Theme(strings.ToLower(v.GetString("display.theme")))
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	cfg.EventsEnabled = v.GetBool("events.enabled")

	window, err := parseWindow(v.GetString("deadlines.due_soon_window"))
	if err != nil {
		return nil, fmt.Errorf("reading .taskconfig: deadlines.due_soon_window: %w", err)
	}
	cfg.DueSoonWindow = window

	return cfg, nil
}

// parseWindow accepts Go durations ("24h", "90m") and whole days ("2d").
func parseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

var validClocks = map[models.ClockFormat]bool{
	models.Clock12h: true,
	models.Clock24h: true,
}

var validThemes = map[models.Theme]bool{
	models.ThemeSystem: true,
	models.ThemeLight:  true,
	models.ThemeDark:   true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "logfmt": true,
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validStorageKeyPattern.MatchString(cfg.StorageKey) {
		errs = append(errs, fmt.Sprintf(
			"storage.key %q is invalid, must match [A-Za-z0-9][A-Za-z0-9._-]{0,63}",
			cfg.StorageKey,
		))
	}

	if cfg.DueSoonWindow <= 0 {
		errs = append(errs, fmt.Sprintf("deadlines.due_soon_window must be positive, got %s", cfg.DueSoonWindow))
	}

	if !validClocks[cfg.Clock] {
		errs = append(errs, fmt.Sprintf("display.clock %q is invalid, must be one of: 12h, 24h", cfg.Clock))
	}

	if !validThemes[cfg.Theme] {
		errs = append(errs, fmt.Sprintf("display.theme %q is invalid, must be one of: system, light, dark", cfg.Theme))
	}

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level %q is invalid, must be one of: debug, info, warn, error", cfg.Log.Level))
	}

	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format %q is invalid, must be one of: text, json, logfmt", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
