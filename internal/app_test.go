package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskmaster/internal/cli"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".taskconfig"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, dir string) *App {
	t.Helper()
	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestResolveBasePath_TMHomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TM_HOME", tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsTaskConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, tmpDir, "display:\n  clock: 24h\n")

	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(subDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TM_HOME", "")

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find .taskconfig in parent)", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TM_HOME", "")

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should fall back to cwd)", got, tmpDir)
	}
}

func TestNewApp_WiresCLI(t *testing.T) {
	tmpDir := t.TempDir()
	app := newTestApp(t, tmpDir)

	if app.Store == nil || app.StateStore == nil || app.Prefs == nil || app.Logger == nil {
		t.Fatal("core services should be initialized")
	}
	if app.EventLog == nil || app.MetricsCalc == nil || app.AlertEngine == nil {
		t.Error("observability should be enabled by default")
	}
	if cli.Store != app.Store {
		t.Error("cli.Store should be the app's store")
	}
	if cli.BasePath != tmpDir {
		t.Errorf("cli.BasePath = %q, want %q", cli.BasePath, tmpDir)
	}
	if want := filepath.Join(tmpDir, "todo-storage.json"); cli.StatePath != want {
		t.Errorf("cli.StatePath = %q, want %q", cli.StatePath, want)
	}
	if len(app.Store.Tasks()) != 0 || app.Store.Filter() != models.FilterAll {
		t.Error("a fresh base path should start with an empty list and the all filter")
	}
}

func TestNewApp_AppliesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
storage:
  key: work-tasks
deadlines:
  due_soon_window: 2h
display:
  clock: 24h
  theme: dark
events:
  enabled: false
`)
	app := newTestApp(t, tmpDir)

	if app.Config.DueSoonWindow != 2*time.Hour {
		t.Errorf("DueSoonWindow = %v, want 2h", app.Config.DueSoonWindow)
	}
	if cli.ClockFormat != models.Clock24h || cli.DefaultTheme != models.ThemeDark {
		t.Errorf("cli display settings = %q/%q", cli.ClockFormat, cli.DefaultTheme)
	}
	if app.EventLog != nil || app.MetricsCalc != nil {
		t.Error("events.enabled=false should disable the event log")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, eventLogFile)); !os.IsNotExist(err) {
		t.Error("no event log file should be created when events are disabled")
	}

	due := time.Now().Add(3 * time.Hour)
	task, err := app.Store.AddTask("report", nil, &due)
	if err != nil {
		t.Fatal(err)
	}
	if got := app.Store.DeadlineStatus(*task); got != models.DeadlineOnTrack {
		t.Errorf("3h away with a 2h window should be on track, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "work-tasks.json")); err != nil {
		t.Errorf("state should be saved under the configured key: %v", err)
	}
}

func TestNewApp_PersistsAcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := NewApp(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Store.AddTask("survive restart", nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := first.Store.SetFilter(models.FilterActive); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := newTestApp(t, tmpDir)
	tasks := second.Store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "survive restart" {
		t.Fatalf("tasks after restart = %+v", tasks)
	}
	if second.Store.Filter() != models.FilterActive {
		t.Errorf("filter after restart = %q, want active", second.Store.Filter())
	}

	metrics, err := second.MetricsCalc.Calculate(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if metrics.TasksAdded != 1 || metrics.FilterChanges != 1 {
		t.Errorf("metrics = %+v, want 1 add and 1 filter change", metrics)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "display:\n  clock: 36h\nlog:\n  level: loud\n")

	_, err := NewApp(tmpDir)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	for _, want := range []string{"display.clock", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestNewApp_CorruptStateIsNotOverwritten(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "todo-storage.json")
	corrupt := []byte(`{"state": {"tasks": [{"id": ""}]}}`)
	if err := os.WriteFile(statePath, corrupt, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewApp(tmpDir); err == nil {
		t.Fatal("expected error for an invalid state file")
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(corrupt) {
		t.Error("state file must be left untouched")
	}
}
