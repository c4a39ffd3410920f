package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/taskmaster/pkg/models"
	"gopkg.in/yaml.v3"
)

// PreferencesManager persists the choices made inside the TUI.
type PreferencesManager interface {
	Load() (*models.UIPreferences, error)
	Save(prefs models.UIPreferences) error
}

type filePreferencesManager struct {
	basePath string
}

// NewPreferencesManager creates a PreferencesManager backed by
// ui-preferences.yaml in the given base directory.
func NewPreferencesManager(basePath string) PreferencesManager {
	return &filePreferencesManager{basePath: basePath}
}

func (m *filePreferencesManager) filePath() string {
	return filepath.Join(m.basePath, "ui-preferences.yaml")
}

// Load returns the saved preferences, or zero-value preferences when the
// file does not exist yet.
func (m *filePreferencesManager) Load() (*models.UIPreferences, error) {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &models.UIPreferences{}, nil
		}
		return nil, fmt.Errorf("loading preferences: %w", err)
	}

	var prefs models.UIPreferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("loading preferences: parsing YAML: %w", err)
	}
	return &prefs, nil
}

func (m *filePreferencesManager) Save(prefs models.UIPreferences) error {
	if err := os.MkdirAll(m.basePath, 0o750); err != nil {
		return fmt.Errorf("saving preferences: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&prefs)
	if err != nil {
		return fmt.Errorf("saving preferences: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving preferences: writing file: %w", err)
	}
	return nil
}
