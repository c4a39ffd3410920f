package observability

import (
	"fmt"
	"time"
)

// Metrics holds activity counters derived from the event log.
type Metrics struct {
	TasksAdded     int        `json:"tasks_added"`
	TasksCompleted int        `json:"tasks_completed"`
	TasksReopened  int        `json:"tasks_reopened"`
	TasksRemoved   int        `json:"tasks_removed"`
	TasksCleared   int        `json:"tasks_cleared"`
	TasksUpdated   int        `json:"tasks_updated"`
	Reorders       int        `json:"reorders"`
	FilterChanges  int        `json:"filter_changes"`
	EventCount     int        `json:"event_count"`
	OldestEvent    *time.Time `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventCount: len(events)}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case "task.added":
			m.TasksAdded++
		case "task.toggled":
			if completed, ok := event.Data["completed"].(bool); ok && !completed {
				m.TasksReopened++
			}
		case "task.completed":
			m.TasksCompleted++
		case "task.removed":
			m.TasksRemoved++
		case "tasks.cleared":
			// JSON numbers decode as float64.
			if n, ok := event.Data["count"].(float64); ok {
				m.TasksCleared += int(n)
			}
		case "task.updated":
			m.TasksUpdated++
		case "task.reordered":
			m.Reorders++
		case "filter.changed":
			m.FilterChanges++
		}
	}

	return m, nil
}
