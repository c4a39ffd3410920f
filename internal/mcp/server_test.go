package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/internal/observability"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// --- Fake implementations ---

type fakeMetricsCalculator struct {
	metrics *observability.Metrics
	err     error
}

func (f *fakeMetricsCalculator) Calculate(_ time.Time) (*observability.Metrics, error) {
	return f.metrics, f.err
}

// --- Test helpers ---

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestStore returns an in-memory store with a fixed clock and sequential ids.
func newTestStore(t *testing.T) core.TaskStore {
	t.Helper()
	n := 0
	return core.NewTaskStore(nil, core.TaskStoreOpts{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		},
	})
}

func newTestServer(t *testing.T, store core.TaskStore, mc observability.MetricsCalculator) *Server {
	t.Helper()
	srv := NewServer(store, mc, "test")
	srv.now = func() time.Time { return testNow }
	return srv
}

func mustAdd(t *testing.T, store core.TaskStore, title string, due *time.Time) *models.Task {
	t.Helper()
	task, err := store.AddTask(title, nil, due)
	if err != nil {
		t.Fatalf("adding task %q: %v", title, err)
	}
	return task
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decode parses the structured (or text) content of a successful result.
func decode(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}
	if err := json.Unmarshal([]byte(extractText(result)), out); err != nil {
		t.Fatalf("unmarshalling text content: %v", err)
	}
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Tests ---

func TestListTasks(t *testing.T) {
	store := newTestStore(t)
	soon := testNow.Add(2 * time.Hour)
	mustAdd(t, store, "Pay rent", &soon)
	done := mustAdd(t, store, "Buy milk", nil)
	if _, err := store.ToggleCompleted(done.ID); err != nil {
		t.Fatalf("toggling: %v", err)
	}

	srv := newTestServer(t, store, nil)

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
		wantFirst string
	}{
		{"defaults to active filter", map[string]any{}, 2, "Buy milk"},
		{"completed", map[string]any{"filter": "completed"}, 1, "Buy milk"},
		{"active", map[string]any{"filter": "active"}, 1, "Pay rent"},
		{"due soon alias", map[string]any{"filter": "due_soon"}, 1, "Pay rent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out listTasksOutput
			decode(t, callTool(t, srv, "list_tasks", tt.args), &out)
			if out.Count != tt.wantCount || len(out.Tasks) != tt.wantCount {
				t.Fatalf("expected %d tasks, got count=%d len=%d", tt.wantCount, out.Count, len(out.Tasks))
			}
			if out.Tasks[0].Title != tt.wantFirst {
				t.Errorf("expected first task %q, got %q", tt.wantFirst, out.Tasks[0].Title)
			}
		})
	}

	if store.Filter() != models.FilterAll {
		t.Errorf("listing must not change the active filter, got %s", store.Filter())
	}
}

func TestListTasksDeadlineStatus(t *testing.T) {
	store := newTestStore(t)
	late := testNow.Add(-time.Hour)
	mustAdd(t, store, "Overdue thing", &late)

	srv := newTestServer(t, store, nil)

	var out listTasksOutput
	decode(t, callTool(t, srv, "list_tasks", map[string]any{}), &out)
	if len(out.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(out.Tasks))
	}
	if out.Tasks[0].DeadlineStatus != string(models.DeadlineOverdue) {
		t.Errorf("expected overdue, got %q", out.Tasks[0].DeadlineStatus)
	}
	if out.Tasks[0].DueTime != late.Format(time.RFC3339) {
		t.Errorf("expected due time %s, got %s", late.Format(time.RFC3339), out.Tasks[0].DueTime)
	}
}

func TestListTasksInvalidFilter(t *testing.T) {
	srv := newTestServer(t, newTestStore(t), nil)

	result := callTool(t, srv, "list_tasks", map[string]any{"filter": "someday"})
	if !result.IsError {
		t.Fatal("expected error result for unknown filter")
	}
}

func TestAddTask(t *testing.T) {
	store := newTestStore(t)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "add_task", map[string]any{
		"title":    "  Write report  ",
		"due_time": "5:30 PM",
	}), &out)

	if out.Task == nil {
		t.Fatal("expected task in output")
	}
	if out.Task.Title != "Write report" {
		t.Errorf("expected trimmed title, got %q", out.Task.Title)
	}

	wantDue := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	if out.Task.DueTime != wantDue.Format(time.RFC3339) {
		t.Errorf("expected due %s, got %s", wantDue.Format(time.RFC3339), out.Task.DueTime)
	}
	if len(store.Tasks()) != 1 {
		t.Errorf("expected 1 task in store, got %d", len(store.Tasks()))
	}
}

func TestAddTaskValidation(t *testing.T) {
	store := newTestStore(t)
	srv := newTestServer(t, store, nil)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"blank title", map[string]any{"title": "   "}},
		{"long title", map[string]any{"title": strings.Repeat("x", 101)}},
		{"bad due time", map[string]any{"title": "ok", "due_time": "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := callTool(t, srv, "add_task", tt.args); !result.IsError {
				t.Error("expected error result")
			}
		})
	}

	if len(store.Tasks()) != 0 {
		t.Errorf("expected no tasks after failed adds, got %d", len(store.Tasks()))
	}
}

func TestToggleTask(t *testing.T) {
	store := newTestStore(t)
	task := mustAdd(t, store, "Water plants", nil)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "toggle_task", map[string]any{"task_id": task.ID}), &out)
	if out.Task == nil || !out.Task.Completed {
		t.Fatalf("expected completed task, got %+v", out.Task)
	}

	decode(t, callTool(t, srv, "toggle_task", map[string]any{"task_id": task.ID}), &out)
	if out.Task == nil || out.Task.Completed {
		t.Fatalf("expected reopened task, got %+v", out.Task)
	}
}

func TestToggleTaskNotFound(t *testing.T) {
	srv := newTestServer(t, newTestStore(t), nil)

	var out messageOutput
	decode(t, callTool(t, srv, "toggle_task", map[string]any{"task_id": "missing"}), &out)
	if out.Task != nil {
		t.Errorf("expected no task for unknown id, got %+v", out.Task)
	}
}

func TestToggleTaskMissingID(t *testing.T) {
	srv := newTestServer(t, newTestStore(t), nil)

	if result := callTool(t, srv, "toggle_task", map[string]any{"task_id": ""}); !result.IsError {
		t.Fatal("expected error for empty task_id")
	}
}

func TestRemoveTask(t *testing.T) {
	store := newTestStore(t)
	task := mustAdd(t, store, "Recycle", nil)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "remove_task", map[string]any{"task_id": task.ID}), &out)
	if len(store.Tasks()) != 0 {
		t.Errorf("expected task removed, %d left", len(store.Tasks()))
	}
}

func TestUpdateTask(t *testing.T) {
	store := newTestStore(t)
	due := testNow.Add(48 * time.Hour)
	task := mustAdd(t, store, "Draft", &due)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "update_task", map[string]any{
		"task_id":    task.ID,
		"title":      "Final draft",
		"start_time": "2026-03-10 08:00",
		"clear_due":  true,
	}), &out)

	got, ok := store.GetTask(task.ID)
	if !ok {
		t.Fatal("task disappeared")
	}
	if got.Title != "Final draft" {
		t.Errorf("expected new title, got %q", got.Title)
	}
	if got.DueTime != nil {
		t.Errorf("expected due time cleared, got %v", got.DueTime)
	}
	if got.StartTime == nil || got.StartTime.Hour() != 8 {
		t.Errorf("expected start at 08:00, got %v", got.StartTime)
	}
}

func TestUpdateTaskKeepsTimesWhenOmitted(t *testing.T) {
	store := newTestStore(t)
	due := testNow.Add(48 * time.Hour)
	task := mustAdd(t, store, "Draft", &due)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "update_task", map[string]any{"task_id": task.ID, "title": "Renamed"}), &out)

	got, _ := store.GetTask(task.ID)
	if got.DueTime == nil || !got.DueTime.Equal(due) {
		t.Errorf("expected due time kept, got %v", got.DueTime)
	}
}

// vanishingStore removes a task right after mutating it, as another process
// sharing the data file could.
type vanishingStore struct {
	core.TaskStore
}

func (v vanishingStore) ToggleCompleted(id string) (bool, error) {
	found, err := v.TaskStore.ToggleCompleted(id)
	_, _ = v.TaskStore.RemoveTask(id)
	return found, err
}

func (v vanishingStore) UpdateTask(id string, patch core.TaskPatch) (bool, error) {
	found, err := v.TaskStore.UpdateTask(id, patch)
	_, _ = v.TaskStore.RemoveTask(id)
	return found, err
}

func TestToggleTaskRemovedMeanwhile(t *testing.T) {
	store := newTestStore(t)
	task := mustAdd(t, store, "Short lived", nil)
	srv := newTestServer(t, vanishingStore{store}, nil)

	result, out, err := srv.handleToggleTask(context.Background(), nil, taskIDInput{TaskID: task.ID})
	if err != nil || result != nil {
		t.Fatalf("handleToggleTask = %v, %v", result, err)
	}
	if out.Task != nil {
		t.Errorf("expected no task, got %+v", out.Task)
	}
	if !strings.Contains(out.Message, "no longer exists") {
		t.Errorf("unexpected message %q", out.Message)
	}
}

func TestUpdateTaskRemovedMeanwhile(t *testing.T) {
	store := newTestStore(t)
	task := mustAdd(t, store, "Short lived", nil)
	srv := newTestServer(t, vanishingStore{store}, nil)

	result, out, err := srv.handleUpdateTask(context.Background(), nil, updateTaskInput{TaskID: task.ID, Title: "Renamed"})
	if err != nil || result != nil {
		t.Fatalf("handleUpdateTask = %v, %v", result, err)
	}
	if out.Task != nil {
		t.Errorf("expected no task, got %+v", out.Task)
	}
	if !strings.Contains(out.Message, "not found") {
		t.Errorf("unexpected message %q", out.Message)
	}
}

type eventCounter struct {
	types []string
}

func (c *eventCounter) LogEvent(eventType string, _ map[string]any) error {
	c.types = append(c.types, eventType)
	return nil
}

func TestUpdateTaskWithoutChangesLogsNothing(t *testing.T) {
	events := &eventCounter{}
	store := core.NewTaskStore(nil, core.TaskStoreOpts{
		Now:    func() time.Time { return testNow },
		Events: events,
	})
	due := testNow.Add(time.Hour)
	task := mustAdd(t, store, "Untouched", &due)
	srv := newTestServer(t, store, nil)
	before := len(events.types)

	var out messageOutput
	decode(t, callTool(t, srv, "update_task", map[string]any{"task_id": task.ID}), &out)
	decode(t, callTool(t, srv, "update_task", map[string]any{"task_id": task.ID, "title": "Untouched"}), &out)

	if got := events.types[before:]; len(got) != 0 {
		t.Errorf("expected no events, got %v", got)
	}
}

func TestUpdateTaskLogsOneEvent(t *testing.T) {
	events := &eventCounter{}
	store := core.NewTaskStore(nil, core.TaskStoreOpts{
		Now:    func() time.Time { return testNow },
		Events: events,
	})
	task := mustAdd(t, store, "Draft", nil)
	srv := newTestServer(t, store, nil)
	before := len(events.types)

	var out messageOutput
	decode(t, callTool(t, srv, "update_task", map[string]any{
		"task_id":  task.ID,
		"title":    "Final",
		"due_time": "2026-03-11 17:00",
	}), &out)

	if got := events.types[before:]; len(got) != 1 || got[0] != "task.updated" {
		t.Errorf("events = %v, want one task.updated", got)
	}
}

func TestReorderTasks(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "c", nil)
	mustAdd(t, store, "b", nil)
	mustAdd(t, store, "a", nil)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "reorder_tasks", map[string]any{"from": 0, "to": 2}), &out)

	var titles []string
	for _, task := range store.Tasks() {
		titles = append(titles, task.Title)
	}
	if fmt.Sprint(titles) != "[b c a]" {
		t.Errorf("unexpected order %v", titles)
	}

	if result := callTool(t, srv, "reorder_tasks", map[string]any{"from": 0, "to": 7}); !result.IsError {
		t.Error("expected error for out-of-range index")
	}
}

func TestClearCompleted(t *testing.T) {
	store := newTestStore(t)
	for _, title := range []string{"one", "two", "three"} {
		task := mustAdd(t, store, title, nil)
		if title != "two" {
			if _, err := store.ToggleCompleted(task.ID); err != nil {
				t.Fatalf("toggling: %v", err)
			}
		}
	}
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "clear_completed", map[string]any{}), &out)
	if out.Count != 2 {
		t.Errorf("expected 2 cleared, got %d", out.Count)
	}
	if out.Message != "cleared 2 completed tasks" {
		t.Errorf("unexpected message %q", out.Message)
	}
	if len(store.Tasks()) != 1 {
		t.Errorf("expected 1 task left, got %d", len(store.Tasks()))
	}
}

func TestSetFilter(t *testing.T) {
	store := newTestStore(t)
	srv := newTestServer(t, store, nil)

	var out messageOutput
	decode(t, callTool(t, srv, "set_filter", map[string]any{"filter": "Completed"}), &out)
	if store.Filter() != models.FilterCompleted {
		t.Errorf("expected completed filter, got %s", store.Filter())
	}

	if result := callTool(t, srv, "set_filter", map[string]any{"filter": "later"}); !result.IsError {
		t.Error("expected error for unknown filter")
	}
	if store.Filter() != models.FilterCompleted {
		t.Errorf("filter changed by invalid request: %s", store.Filter())
	}
}

func TestGetMetrics(t *testing.T) {
	oldest := testNow.Add(-72 * time.Hour)
	mc := &fakeMetricsCalculator{metrics: &observability.Metrics{
		TasksAdded:     5,
		TasksCompleted: 3,
		TasksCleared:   2,
		EventCount:     10,
		OldestEvent:    &oldest,
	}}
	srv := newTestServer(t, newTestStore(t), mc)

	var out metricsOutput
	decode(t, callTool(t, srv, "get_metrics", map[string]any{"since": "30d"}), &out)
	if out.TasksAdded != 5 || out.TasksCompleted != 3 || out.TasksCleared != 2 {
		t.Errorf("unexpected metrics %+v", out)
	}
	if out.OldestEvent != oldest.Format(time.RFC3339) {
		t.Errorf("expected oldest %s, got %s", oldest.Format(time.RFC3339), out.OldestEvent)
	}
}

func TestGetMetricsErrors(t *testing.T) {
	tests := []struct {
		name string
		mc   observability.MetricsCalculator
		args map[string]any
	}{
		{"disabled", nil, map[string]any{}},
		{"bad since", &fakeMetricsCalculator{metrics: &observability.Metrics{}}, map[string]any{"since": "7w"}},
		{"calculator error", &fakeMetricsCalculator{err: errors.New("disk gone")}, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, newTestStore(t), tt.mc)
			if result := callTool(t, srv, "get_metrics", tt.args); !result.IsError {
				t.Error("expected error result")
			}
		})
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"7d", now.AddDate(0, 0, -7), false},
		{"30d", now.AddDate(0, 0, -30), false},
		{"24h", now.Add(-24 * time.Hour), false},
		{"", time.Time{}, true},
		{"d", time.Time{}, true},
		{"5w", time.Time{}, true},
		{"xd", time.Time{}, true},
		{"7xd", time.Time{}, true},
		{"-3d", time.Time{}, true},
		{"1.5h", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSince(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSince(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
