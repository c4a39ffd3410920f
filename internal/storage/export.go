package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/valter-silva-au/taskmaster/pkg/models"
	"gopkg.in/yaml.v3"
)

// ExportFormat names an encoding supported by ExportState.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
	ExportTOML ExportFormat = "toml"
)

// ExportFormats lists the supported formats for flag help and completion.
var ExportFormats = []ExportFormat{ExportJSON, ExportYAML, ExportTOML}

// ParseExportFormat converts a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportJSON, ExportYAML, ExportTOML:
		return f, nil
	case "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q: must be one of json, yaml, toml", s)
	}
}

// ExportState writes state to w in the given format. The JSON form is the
// same envelope the state file uses, so it can be restored by copying it
// into place.
func ExportState(w io.Writer, state models.TaskState, format ExportFormat) error {
	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}

	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(persistedState{State: state, Version: stateVersion}); err != nil {
			return fmt.Errorf("exporting JSON: %w", err)
		}
	case ExportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&state); err != nil {
			return fmt.Errorf("exporting YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("exporting YAML: %w", err)
		}
	case ExportTOML:
		if err := toml.NewEncoder(w).Encode(state); err != nil {
			return fmt.Errorf("exporting TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}
