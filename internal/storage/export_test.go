package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/valter-silva-au/taskmaster/pkg/models"
	"gopkg.in/yaml.v3"
)

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"json", ExportJSON, false},
		{"YAML", ExportYAML, false},
		{"yml", ExportYAML, false},
		{" toml ", ExportTOML, false},
		{"csv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseExportFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExportFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExportFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportState_JSONMatchesStateFile(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportState(&buf, sampleState(), ExportJSON); err != nil {
		t.Fatalf("ExportState: %v", err)
	}

	if err := validateStateDocument(buf.Bytes()); err != nil {
		t.Errorf("JSON export should be a valid state file: %v", err)
	}

	var env persistedState
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if len(env.State.Tasks) != 2 || env.State.Filter != models.FilterActive {
		t.Errorf("unexpected export %+v", env.State)
	}
}

func TestExportState_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportState(&buf, sampleState(), ExportYAML); err != nil {
		t.Fatalf("ExportState: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "title: Call the bank") {
		t.Errorf("expected title in YAML, got:\n%s", out)
	}
	if !strings.Contains(out, "filter: active") {
		t.Errorf("expected filter in YAML, got:\n%s", out)
	}

	var decoded models.TaskState
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding YAML: %v", err)
	}
	if len(decoded.Tasks) != 2 || decoded.Tasks[0].DueTime == nil {
		t.Errorf("YAML lost data: %+v", decoded)
	}
}

func TestExportState_TOML(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportState(&buf, sampleState(), ExportTOML); err != nil {
		t.Fatalf("ExportState: %v", err)
	}

	var decoded models.TaskState
	if _, err := toml.Decode(buf.String(), &decoded); err != nil {
		t.Fatalf("decoding TOML: %v\n%s", err, buf.String())
	}
	if len(decoded.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(decoded.Tasks))
	}
	if decoded.Tasks[1].Title != "Buy milk" || !decoded.Tasks[1].Completed {
		t.Errorf("unexpected second task %+v", decoded.Tasks[1])
	}
	if decoded.Filter != models.FilterActive {
		t.Errorf("filter = %q", decoded.Filter)
	}
}

func TestExportState_EmptyAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportState(&buf, models.TaskState{Filter: models.FilterAll}, ExportJSON); err != nil {
		t.Fatalf("ExportState: %v", err)
	}
	if !strings.Contains(buf.String(), `"tasks": []`) {
		t.Errorf("expected empty task array, got %s", buf.String())
	}

	if err := ExportState(&buf, sampleState(), "csv"); err == nil {
		t.Error("expected error for unknown format")
	}
}
