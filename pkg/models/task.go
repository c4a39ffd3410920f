package models

import "time"

// Filter names a view predicate applied to the task list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterDueSoon   Filter = "due-soon"
)

// AllFilters lists the filters in the order the filter bar shows them.
var AllFilters = []Filter{FilterAll, FilterActive, FilterCompleted, FilterDueSoon}

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted, FilterDueSoon:
		return true
	}
	return false
}

// DeadlineStatus classifies a due time relative to now. The zero value means
// the task has no (usable) due time.
type DeadlineStatus string

const (
	DeadlineNone    DeadlineStatus = ""
	DeadlineOverdue DeadlineStatus = "overdue"
	DeadlineDueSoon DeadlineStatus = "due-soon"
	DeadlineOnTrack DeadlineStatus = "on-track"
)

// Task is a single to-do entry with a title, a completion flag and an
// optional scheduling window.
type Task struct {
	ID        string     `json:"id" yaml:"id" toml:"id"`
	Title     string     `json:"title" yaml:"title" toml:"title"`
	Completed bool       `json:"completed" yaml:"completed" toml:"completed"`
	CreatedAt time.Time  `json:"createdAt" yaml:"created_at" toml:"created_at"`
	StartTime *time.Time `json:"startTime,omitempty" yaml:"start_time,omitempty" toml:"start_time,omitempty"`
	DueTime   *time.Time `json:"dueTime,omitempty" yaml:"due_time,omitempty" toml:"due_time,omitempty"`
}

// Clone returns a deep copy of t, so callers can hold on to it while the
// store keeps mutating its own list.
func (t Task) Clone() Task {
	c := t
	if t.StartTime != nil {
		st := *t.StartTime
		c.StartTime = &st
	}
	if t.DueTime != nil {
		dt := *t.DueTime
		c.DueTime = &dt
	}
	return c
}

// TaskState is the persisted state of the task store: the ordered task list
// plus the active filter.
type TaskState struct {
	Tasks  []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
	Filter Filter `json:"filter" yaml:"filter" toml:"filter"`
}

// TaskCounts summarises the list for the filter bar and status output.
type TaskCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	DueSoon   int `json:"due_soon"`
	Overdue   int `json:"overdue"`
}
