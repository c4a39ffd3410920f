package core

import (
	"time"

	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// MatchesFilter reports whether task belongs in the view named by filter at
// time now. Unknown filters match everything, like "all".
func MatchesFilter(task models.Task, filter models.Filter, now time.Time, window time.Duration) bool {
	switch filter {
	case models.FilterActive:
		return !task.Completed
	case models.FilterCompleted:
		return task.Completed
	case models.FilterDueSoon:
		return isDueSoon(task, now, window)
	default:
		return true
	}
}

// FilterTasks returns the subsequence of tasks matching filter, preserving
// order. The input slice is never modified.
func FilterTasks(tasks []models.Task, filter models.Filter, now time.Time, window time.Duration) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if MatchesFilter(t, filter, now, window) {
			result = append(result, t.Clone())
		}
	}
	return result
}

// CountTasks summarises tasks for the filter bar and the status command.
func CountTasks(tasks []models.Task, now time.Time, window time.Duration) models.TaskCounts {
	counts := models.TaskCounts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			counts.Completed++
			continue
		}
		counts.Active++
		switch DeadlineStatusWithin(t.DueTime, now, window) {
		case models.DeadlineOverdue:
			counts.Overdue++
		case models.DeadlineDueSoon:
			if isDueSoon(t, now, window) {
				counts.DueSoon++
			}
		}
	}
	return counts
}

// isDueSoon is the due-soon filter predicate: an open task whose due time is
// strictly in the future and inside the window.
func isDueSoon(task models.Task, now time.Time, window time.Duration) bool {
	if task.Completed || task.DueTime == nil || task.DueTime.IsZero() {
		return false
	}
	remaining := task.DueTime.Sub(now)
	return remaining > 0 && withinDueSoonWindow(remaining, window)
}
