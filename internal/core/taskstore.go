package core

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// StateSaver is the persistence port of the task store. The store loads from
// it once at startup and overwrites it after every successful mutation.
// Defining it here keeps core independent of the storage package.
type StateSaver interface {
	LoadState() (*models.TaskState, error)
	SaveState(state models.TaskState) error
}

// TaskStore defines the operations on the ordered task list and the active
// filter.
type TaskStore interface {
	AddTask(title string, startTime, dueTime *time.Time) (*models.Task, error)
	ToggleCompleted(id string) (bool, error)
	RemoveTask(id string) (bool, error)
	UpdateTitle(id, title string) (bool, error)
	UpdateTimes(id string, startTime, dueTime *time.Time) (bool, error)
	UpdateTask(id string, patch TaskPatch) (bool, error)
	Reorder(fromIndex, toIndex int) (bool, error)
	ClearCompleted() (int, error)
	SetFilter(filter models.Filter) error
	AddSampleTasks() (int, error)

	Filter() models.Filter
	Tasks() []models.Task
	GetTask(id string) (*models.Task, bool)
	VisibleTasks() []models.Task
	TasksMatching(filter models.Filter) []models.Task
	Counts() models.TaskCounts
	DeadlineStatus(task models.Task) models.DeadlineStatus
	Reload() error
}

// TaskStoreOpts holds the optional collaborators of a task store. Zero values
// select the real clock, UUIDv4 ids, the default due-soon window and no
// event logging.
type TaskStoreOpts struct {
	Now           func() time.Time
	NewID         func() string
	DueSoonWindow time.Duration
	Events        EventLogger
}

// TaskPatch describes an edit. A nil Title keeps the current one; the times
// are only touched when their Set flag is true, and a nil time then clears it.
type TaskPatch struct {
	Title     *string
	SetStart  bool
	StartTime *time.Time
	SetDue    bool
	DueTime   *time.Time
}

// SampleTaskTitles are offered from the empty state to get a new user going.
var SampleTaskTitles = []string{
	"Learn React and TypeScript",
	"Build a Todo App with drag and drop",
	"Add dark mode support",
	"Implement local storage persistence",
	"Make the UI responsive for mobile devices",
}

// taskStore implements TaskStore over an in-memory state that is written
// through to a StateSaver.
type taskStore struct {
	mu     sync.Mutex
	state  models.TaskState
	saver  StateSaver
	now    func() time.Time
	newID  func() string
	window time.Duration
	events EventLogger
}

// NewTaskStore creates a TaskStore persisting through saver. saver may be nil,
// in which case the store lives only in memory.
func NewTaskStore(saver StateSaver, opts TaskStoreOpts) TaskStore {
	s := &taskStore{
		state:  models.TaskState{Tasks: []models.Task{}, Filter: models.FilterAll},
		saver:  saver,
		now:    opts.Now,
		newID:  opts.NewID,
		window: opts.DueSoonWindow,
		events: opts.Events,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.window <= 0 {
		s.window = DefaultDueSoonWindow
	}
	return s
}

// Reload replaces the in-memory state with the persisted one. A missing
// state yields an empty list; an unknown filter falls back to "all".
func (s *taskStore) Reload() error {
	if s.saver == nil {
		return nil
	}
	loaded, err := s.saver.LoadState()
	if err != nil {
		return fmt.Errorf("loading task state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.TaskState{Tasks: []models.Task{}, Filter: models.FilterAll}
	if loaded == nil {
		return nil
	}
	if loaded.Tasks != nil {
		s.state.Tasks = loaded.Tasks
	}
	if loaded.Filter.Valid() {
		s.state.Filter = loaded.Filter
	}
	return nil
}

func (s *taskStore) AddTask(title string, startTime, dueTime *time.Time) (*models.Task, error) {
	trimmed, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:        s.newID(),
		Title:     trimmed,
		CreatedAt: s.now().UTC(),
		StartTime: copyTime(startTime),
		DueTime:   copyTime(dueTime),
	}

	prev := s.snapshot()
	tasks := make([]models.Task, 0, len(s.state.Tasks)+1)
	tasks = append(tasks, task)
	s.state.Tasks = append(tasks, s.state.Tasks...)

	if err := s.commit(prev); err != nil {
		return nil, fmt.Errorf("adding task: %w", err)
	}
	s.logEvent("task.added", map[string]any{"task_id": task.ID, "title": task.Title})

	out := task.Clone()
	return &out, nil
}

func (s *taskStore) ToggleCompleted(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	prev := s.snapshot()
	s.state.Tasks[idx].Completed = !s.state.Tasks[idx].Completed
	completed := s.state.Tasks[idx].Completed

	if err := s.commit(prev); err != nil {
		return false, fmt.Errorf("toggling task %s: %w", id, err)
	}
	s.logEvent("task.toggled", map[string]any{"task_id": id, "completed": completed})
	if completed {
		s.logEvent("task.completed", map[string]any{"task_id": id})
	}
	return true, nil
}

func (s *taskStore) RemoveTask(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	prev := s.snapshot()
	tasks := make([]models.Task, 0, len(s.state.Tasks)-1)
	tasks = append(tasks, s.state.Tasks[:idx]...)
	s.state.Tasks = append(tasks, s.state.Tasks[idx+1:]...)

	if err := s.commit(prev); err != nil {
		return false, fmt.Errorf("removing task %s: %w", id, err)
	}
	s.logEvent("task.removed", map[string]any{"task_id": id})
	return true, nil
}

func (s *taskStore) UpdateTitle(id, title string) (bool, error) {
	return s.UpdateTask(id, TaskPatch{Title: &title})
}

func (s *taskStore) UpdateTimes(id string, startTime, dueTime *time.Time) (bool, error) {
	return s.UpdateTask(id, TaskPatch{SetStart: true, StartTime: startTime, SetDue: true, DueTime: dueTime})
}

// UpdateTask applies every field of patch in one save. The title is
// validated before anything changes, and a patch that leaves the task as it
// was neither saves nor logs an event.
func (s *taskStore) UpdateTask(id string, patch TaskPatch) (bool, error) {
	var title string
	if patch.Title != nil {
		trimmed, err := ValidateTitle(*patch.Title)
		if err != nil {
			return false, err
		}
		title = trimmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	cur := s.state.Tasks[idx]
	var fields []string
	if patch.Title != nil && cur.Title != title {
		cur.Title = title
		fields = append(fields, "title")
	}
	if patch.SetStart && !sameTime(cur.StartTime, patch.StartTime) {
		cur.StartTime = copyTime(patch.StartTime)
		fields = append(fields, "start")
	}
	if patch.SetDue && !sameTime(cur.DueTime, patch.DueTime) {
		cur.DueTime = copyTime(patch.DueTime)
		fields = append(fields, "due")
	}
	if len(fields) == 0 {
		return true, nil
	}

	prev := s.snapshot()
	s.state.Tasks[idx] = cur

	if err := s.commit(prev); err != nil {
		return false, fmt.Errorf("updating task %s: %w", id, err)
	}
	s.logEvent("task.updated", map[string]any{"task_id": id, "field": strings.Join(fields, ",")})
	return true, nil
}

// Reorder moves the task at fromIndex to toIndex, shifting the tasks in
// between. Indices outside the list are rejected without touching state.
func (s *taskStore) Reorder(fromIndex, toIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.Tasks)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return false, nil
	}
	if fromIndex == toIndex {
		return true, nil
	}

	prev := s.snapshot()
	s.state.Tasks = moveTask(s.state.Tasks, fromIndex, toIndex)

	if err := s.commit(prev); err != nil {
		return false, fmt.Errorf("reordering tasks: %w", err)
	}
	s.logEvent("task.reordered", map[string]any{"from": fromIndex, "to": toIndex})
	return true, nil
}

// ClearCompleted removes every completed task and returns how many went.
func (s *taskStore) ClearCompleted() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.state.Tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	prev := s.snapshot()
	s.state.Tasks = kept

	if err := s.commit(prev); err != nil {
		return 0, fmt.Errorf("clearing completed tasks: %w", err)
	}
	s.logEvent("tasks.cleared", map[string]any{"count": removed})
	return removed, nil
}

func (s *taskStore) SetFilter(filter models.Filter) error {
	if !filter.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidFilter, filter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Filter == filter {
		return nil
	}

	prev := s.snapshot()
	s.state.Filter = filter

	if err := s.commit(prev); err != nil {
		return fmt.Errorf("setting filter: %w", err)
	}
	s.logEvent("filter.changed", map[string]any{"filter": string(filter)})
	return nil
}

// AddSampleTasks adds the sample titles one by one, so the last sample ends
// up first, exactly as if the user had typed them in.
func (s *taskStore) AddSampleTasks() (int, error) {
	added := 0
	for _, title := range SampleTaskTitles {
		if _, err := s.AddTask(title, nil, nil); err != nil {
			return added, fmt.Errorf("adding sample tasks: %w", err)
		}
		added++
	}
	return added, nil
}

func (s *taskStore) Filter() models.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filter
}

// Tasks returns a copy of the full list in display order.
func (s *taskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.state.Tasks)
}

func (s *taskStore) GetTask(id string) (*models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	t := s.state.Tasks[idx].Clone()
	return &t, true
}

// VisibleTasks derives the view for the active filter at the current time.
// It never mutates state.
func (s *taskStore) VisibleTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.state.Tasks, s.state.Filter, s.now(), s.window)
}

// TasksMatching derives the view for filter without changing the active one.
func (s *taskStore) TasksMatching(filter models.Filter) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.state.Tasks, filter, s.now(), s.window)
}

func (s *taskStore) Counts() models.TaskCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountTasks(s.state.Tasks, s.now(), s.window)
}

func (s *taskStore) DeadlineStatus(task models.Task) models.DeadlineStatus {
	return DeadlineStatusWithin(task.DueTime, s.now(), s.window)
}

// --- internal helpers (callers hold s.mu) ---

func (s *taskStore) indexOf(id string) int {
	for i, t := range s.state.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies the state so a failed save can restore it. Task values
// are copied; their time pointers are only ever replaced, never written
// through, so sharing them is safe.
func (s *taskStore) snapshot() models.TaskState {
	tasks := make([]models.Task, len(s.state.Tasks))
	copy(tasks, s.state.Tasks)
	return models.TaskState{Tasks: tasks, Filter: s.state.Filter}
}

// commit persists the current state, restoring prev if the save fails.
func (s *taskStore) commit(prev models.TaskState) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.SaveState(s.snapshot()); err != nil {
		s.state = prev
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func (s *taskStore) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(eventType, data) // Non-fatal.
}

// moveTask returns a new slice with the element at from moved to to.
func moveTask(tasks []models.Task, from, to int) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	result = append(result, tasks[:from]...)
	result = append(result, tasks[from+1:]...)

	moved := tasks[from]
	result = append(result, models.Task{})
	copy(result[to+1:], result[to:])
	result[to] = moved
	return result
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	c := *t
	return &c
}

// sameTime treats nil and the zero time alike, matching copyTime.
func sameTime(a, b *time.Time) bool {
	a, b = copyTime(a), copyTime(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
