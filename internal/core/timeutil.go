package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// DefaultDueSoonWindow is how far ahead a due time counts as "due soon".
const DefaultDueSoonWindow = 24 * time.Hour

var (
	// clock12hPattern matches "2:30 PM", "02:30pm", "2:30 a.m." style input.
	clock12hPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([ap])\.?\s*m\.?$`)

	// clock24hPattern matches "14:30" and "9:05".
	clock24hPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseTimeToToday parses a 12-hour ("2:30 PM") or 24-hour ("14:30") time of
// day and anchors it to the calendar day of now, in now's location. The same
// string therefore yields a different instant on every day it is parsed.
// Hours above 23 (or outside 1..12 with a meridiem) and minutes above 59 are
// rejected with a nil result.
func ParseTimeToToday(s string, now time.Time) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	var hour, minute int
	if m := clock12hPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if h < 1 || h > 12 {
			return nil, false
		}
		hour = h % 12
		if strings.EqualFold(m[3], "p") {
			hour += 12
		}
	} else if m := clock24hPattern.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else {
		return nil, false
	}

	if hour > 23 || minute > 59 {
		return nil, false
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return &t, true
}

// ParseDateTime parses an ISO-8601 (RFC 3339) timestamp. Unparseable input
// yields a nil result instead of an error.
func ParseDateTime(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// localDateTimeLayouts are the date+time forms accepted from interactive input.
var localDateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
}

// ParseTimeInput parses user-entered time input: a full RFC 3339 timestamp,
// a local "YYYY-MM-DD HH:MM" date-time, or a bare time of day anchored to
// today.
func ParseTimeInput(s string, now time.Time) (*time.Time, bool) {
	if t, ok := ParseDateTime(s); ok {
		return t, true
	}
	trimmed := strings.TrimSpace(s)
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			return &t, true
		}
	}
	return ParseTimeToToday(trimmed, now)
}

// FormatTime renders the time of day of t, e.g. "2:30 PM" or "14:30".
// A nil time renders as the empty string.
func FormatTime(t *time.Time, clock models.ClockFormat) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if clock == models.Clock24h {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FormatDateTime renders t as a short date and time, e.g. "Jan 2, 2:30 PM".
func FormatDateTime(t *time.Time, clock models.ClockFormat) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("Jan 2") + ", " + FormatTime(t, clock)
}

// GetDeadlineStatus classifies due relative to now using the default window.
func GetDeadlineStatus(due *time.Time, now time.Time) models.DeadlineStatus {
	return DeadlineStatusWithin(due, now, DefaultDueSoonWindow)
}

// DeadlineStatusWithin classifies due relative to now: overdue once the due
// time has passed, due-soon while it is at most window away, on-track
// otherwise. A nil or zero due time has no status.
func DeadlineStatusWithin(due *time.Time, now time.Time, window time.Duration) models.DeadlineStatus {
	if due == nil || due.IsZero() {
		return models.DeadlineNone
	}
	remaining := due.Sub(now)
	if remaining < 0 {
		return models.DeadlineOverdue
	}
	if withinDueSoonWindow(remaining, window) {
		return models.DeadlineDueSoon
	}
	return models.DeadlineOnTrack
}

// withinDueSoonWindow is shared by the deadline status and the due-soon
// filter so the two cannot drift apart.
func withinDueSoonWindow(remaining, window time.Duration) bool {
	if window <= 0 {
		window = DefaultDueSoonWindow
	}
	return remaining >= 0 && remaining <= window
}
