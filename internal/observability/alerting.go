package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"task_id,omitempty"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire.
type AlertThresholds struct {
	DueSoonWindow time.Duration `yaml:"due_soon_window" json:"due_soon_window"`
	MaxOpenTasks  int           `yaml:"max_open_tasks" json:"max_open_tasks"`
}

// DefaultAlertThresholds returns the default alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		DueSoonWindow: 24 * time.Hour,
		MaxOpenTasks:  25,
	}
}

// DeadlineClassifier classifies a due time. It is satisfied by the task
// store so alerts and the list view agree on what "due soon" means.
type DeadlineClassifier interface {
	DeadlineStatus(task models.Task) models.DeadlineStatus
}

// AlertEngine evaluates alert conditions against the current task list.
// Alerts are computed on demand for display; nothing is scheduled.
type AlertEngine interface {
	Evaluate(tasks []models.Task, now time.Time) []Alert
}

type alertEngine struct {
	classifier DeadlineClassifier
	thresholds AlertThresholds
}

// NewAlertEngine creates an AlertEngine using classifier for deadline status.
func NewAlertEngine(classifier DeadlineClassifier, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		classifier: classifier,
		thresholds: thresholds,
	}
}

// Evaluate returns alerts for overdue and due-soon open tasks plus a backlog
// size alert, highest severity first and in list order within a severity.
func (ae *alertEngine) Evaluate(tasks []models.Task, now time.Time) []Alert {
	var alerts []Alert
	open := 0

	for _, t := range tasks {
		if t.Completed {
			continue
		}
		open++

		switch ae.classifier.DeadlineStatus(t) {
		case models.DeadlineOverdue:
			alerts = append(alerts, Alert{
				ID:          "overdue-" + t.ID,
				TaskID:      t.ID,
				Condition:   "task_overdue",
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("%q is overdue by %s", t.Title, humanDuration(now.Sub(*t.DueTime))),
				TriggeredAt: now,
			})
		case models.DeadlineDueSoon:
			alerts = append(alerts, Alert{
				ID:          "due-soon-" + t.ID,
				TaskID:      t.ID,
				Condition:   "task_due_soon",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("%q is due in %s", t.Title, humanDuration(t.DueTime.Sub(now))),
				TriggeredAt: now,
			})
		}
	}

	if ae.thresholds.MaxOpenTasks > 0 && open > ae.thresholds.MaxOpenTasks {
		alerts = append(alerts, Alert{
			ID:          "open-tasks",
			Condition:   "too_many_open_tasks",
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("%d open tasks exceeds the limit of %d", open, ae.thresholds.MaxOpenTasks),
			TriggeredAt: now,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return SeverityRank(alerts[i].Severity) < SeverityRank(alerts[j].Severity)
	})
	return alerts
}

// SeverityRank orders severities high first.
func SeverityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// humanDuration renders d rounded to minutes, e.g. "2h30m" or "3d4h".
func humanDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
