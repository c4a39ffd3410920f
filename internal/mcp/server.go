// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task store as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/internal/observability"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// Server wraps the task store and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	store       core.TaskStore
	metricsCalc observability.MetricsCalculator
	now         func() time.Time
}

// NewServer creates a new MCP server over store. metricsCalc may be nil if
// the event log is disabled.
func NewServer(store core.TaskStore, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:       store,
		metricsCalc: metricsCalc,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tm", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Completed      bool   `json:"completed"`
	CreatedAt      string `json:"created_at"`
	StartTime      string `json:"start_time,omitempty"`
	DueTime        string `json:"due_time,omitempty"`
	DeadlineStatus string `json:"deadline_status,omitempty"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"view to list: all, active, completed or due-soon; defaults to the active filter"`
}

type listTasksOutput struct {
	Filter string       `json:"filter"`
	Tasks  []taskOutput `json:"tasks"`
	Count  int          `json:"count"`
}

type addTaskInput struct {
	Title     string `json:"title" jsonschema:"task title, 1 to 100 characters"`
	StartTime string `json:"start_time,omitempty" jsonschema:"optional start time: RFC 3339, YYYY-MM-DD HH:MM, or a time of day like 2:30 PM"`
	DueTime   string `json:"due_time,omitempty" jsonschema:"optional due time in the same formats as start_time"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"the task id (UUID)"`
}

type updateTaskInput struct {
	TaskID     string `json:"task_id" jsonschema:"the task id (UUID)"`
	Title      string `json:"title,omitempty" jsonschema:"new title; omitted keeps the current title"`
	StartTime  string `json:"start_time,omitempty" jsonschema:"new start time; omitted keeps the current one"`
	DueTime    string `json:"due_time,omitempty" jsonschema:"new due time; omitted keeps the current one"`
	ClearStart bool   `json:"clear_start,omitempty" jsonschema:"remove the start time"`
	ClearDue   bool   `json:"clear_due,omitempty" jsonschema:"remove the due time"`
}

type reorderInput struct {
	From int `json:"from" jsonschema:"zero-based index of the task to move"`
	To   int `json:"to" jsonschema:"zero-based destination index"`
}

type setFilterInput struct {
	Filter string `json:"filter" jsonschema:"all, active, completed or due-soon"`
}

type messageOutput struct {
	Message string      `json:"message"`
	Task    *taskOutput `json:"task,omitempty"`
	Count   int         `json:"count,omitempty"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window, e.g. 7d, 30d or 24h; defaults to 7d"`
}

type metricsOutput struct {
	TasksAdded     int    `json:"tasks_added"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksReopened  int    `json:"tasks_reopened"`
	TasksRemoved   int    `json:"tasks_removed"`
	TasksCleared   int    `json:"tasks_cleared"`
	TasksUpdated   int    `json:"tasks_updated"`
	Reorders       int    `json:"reorders"`
	FilterChanges  int    `json:"filter_changes"`
	EventCount     int    `json:"event_count"`
	OldestEvent    string `json:"oldest_event,omitempty"`
	NewestEvent    string `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in display order for a filter (all, active, completed, due-soon). Each task carries its deadline status.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Add a task at the top of the list, with optional start and due times.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_task",
		Description: "Flip a task between completed and open.",
	}, s.handleToggleTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "remove_task",
		Description: "Delete a task.",
	}, s.handleRemoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Change a task's title and/or its start and due times.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "reorder_tasks",
		Description: "Move the task at index from to index to (zero-based, full list order).",
	}, s.handleReorder)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "clear_completed",
		Description: "Delete every completed task and report how many were removed.",
	}, s.handleClearCompleted)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "set_filter",
		Description: "Set the active filter used by the list views.",
	}, s.handleSetFilter)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get activity counters (added, completed, removed, ...) from the event log.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter := s.store.Filter()
	if input.Filter != "" {
		f, err := core.ParseFilter(input.Filter)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		filter = f
	}

	tasks := s.store.TasksMatching(filter)

	out := listTasksOutput{
		Filter: string(filter),
		Tasks:  make([]taskOutput, len(tasks)),
		Count:  len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = s.taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	now := s.now()
	start, err := parseOptionalTime("start_time", input.StartTime, now)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	due, err := parseOptionalTime("due_time", input.DueTime, now)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}

	task, err := s.store.AddTask(input.Title, start, due)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), messageOutput{}, nil
	}

	out := s.taskToOutput(*task)
	return nil, messageOutput{Message: "task added", Task: &out}, nil
}

func (s *Server) handleToggleTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	found, err := s.store.ToggleCompleted(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("toggling task %s: %s", input.TaskID, err)), messageOutput{}, nil
	}
	if !found {
		return nil, messageOutput{Message: fmt.Sprintf("task %s not found, nothing changed", input.TaskID)}, nil
	}

	task, ok := s.store.GetTask(input.TaskID)
	if !ok {
		return nil, messageOutput{Message: fmt.Sprintf("task %s toggled but no longer exists", input.TaskID)}, nil
	}
	out := s.taskToOutput(*task)
	state := "reopened"
	if task.Completed {
		state = "completed"
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s %s", input.TaskID, state), Task: &out}, nil
}

func (s *Server) handleRemoveTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	found, err := s.store.RemoveTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("removing task %s: %s", input.TaskID, err)), messageOutput{}, nil
	}
	if !found {
		return nil, messageOutput{Message: fmt.Sprintf("task %s not found, nothing changed", input.TaskID)}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s removed", input.TaskID)}, nil
}

func (s *Server) handleUpdateTask(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	current, ok := s.store.GetTask(input.TaskID)
	if !ok {
		return nil, messageOutput{Message: fmt.Sprintf("task %s not found, nothing changed", input.TaskID)}, nil
	}

	now := s.now()
	var patch core.TaskPatch
	if input.Title != "" {
		patch.Title = &input.Title
	}
	if input.StartTime != "" {
		t, err := parseOptionalTime("start_time", input.StartTime, now)
		if err != nil {
			return errorResult(err.Error()), messageOutput{}, nil
		}
		patch.SetStart, patch.StartTime = true, t
	}
	if input.DueTime != "" {
		t, err := parseOptionalTime("due_time", input.DueTime, now)
		if err != nil {
			return errorResult(err.Error()), messageOutput{}, nil
		}
		patch.SetDue, patch.DueTime = true, t
	}
	if input.ClearStart {
		patch.SetStart, patch.StartTime = true, nil
	}
	if input.ClearDue {
		patch.SetDue, patch.DueTime = true, nil
	}

	found, err := s.store.UpdateTask(current.ID, patch)
	if err != nil {
		return errorResult(fmt.Sprintf("updating task %s: %s", input.TaskID, err)), messageOutput{}, nil
	}
	updated, ok := s.store.GetTask(input.TaskID)
	if !found || !ok {
		return nil, messageOutput{Message: fmt.Sprintf("task %s not found, nothing changed", input.TaskID)}, nil
	}
	out := s.taskToOutput(*updated)
	return nil, messageOutput{Message: fmt.Sprintf("task %s updated", input.TaskID), Task: &out}, nil
}

func (s *Server) handleReorder(_ context.Context, _ *gomcp.CallToolRequest, input reorderInput) (*gomcp.CallToolResult, messageOutput, error) {
	moved, err := s.store.Reorder(input.From, input.To)
	if err != nil {
		return errorResult(fmt.Sprintf("reordering tasks: %s", err)), messageOutput{}, nil
	}
	if !moved {
		return errorResult(fmt.Sprintf("index out of range: from=%d to=%d, list has %d tasks", input.From, input.To, len(s.store.Tasks()))), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("moved task from %d to %d", input.From, input.To)}, nil
}

func (s *Server) handleClearCompleted(_ context.Context, _ *gomcp.CallToolRequest, _ struct{}) (*gomcp.CallToolResult, messageOutput, error) {
	n, err := s.store.ClearCompleted()
	if err != nil {
		return errorResult(fmt.Sprintf("clearing completed tasks: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("cleared %d completed %s", n, pluralTasks(n)), Count: n}, nil
}

func (s *Server) handleSetFilter(_ context.Context, _ *gomcp.CallToolRequest, input setFilterInput) (*gomcp.CallToolResult, messageOutput, error) {
	f, err := core.ParseFilter(input.Filter)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	if err := s.store.SetFilter(f); err != nil {
		return errorResult(fmt.Sprintf("setting filter: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("filter set to %s", f)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	since, err := ParseSince(sinceStr, s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	m, err := s.metricsCalc.Calculate(since)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		TasksAdded:     m.TasksAdded,
		TasksCompleted: m.TasksCompleted,
		TasksReopened:  m.TasksReopened,
		TasksRemoved:   m.TasksRemoved,
		TasksCleared:   m.TasksCleared,
		TasksUpdated:   m.TasksUpdated,
		Reorders:       m.Reorders,
		FilterChanges:  m.FilterChanges,
		EventCount:     m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

// --- Helpers ---

func (s *Server) taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:             t.ID,
		Title:          t.Title,
		Completed:      t.Completed,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		DeadlineStatus: string(s.store.DeadlineStatus(t)),
	}
	if t.StartTime != nil {
		out.StartTime = t.StartTime.Format(time.RFC3339)
	}
	if t.DueTime != nil {
		out.DueTime = t.DueTime.Format(time.RFC3339)
	}
	return out
}

func parseOptionalTime(field, value string, now time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, ok := core.ParseTimeInput(value, now)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q: use RFC 3339, YYYY-MM-DD HH:MM, HH:MM or H:MM AM/PM", field, value)
	}
	return t, nil
}

func pluralTasks(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d" or
// "24h" into the corresponding instant before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
