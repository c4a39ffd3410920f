package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 100

// Validation errors. The store rejects the operation and leaves its state
// untouched when it returns one of these.
var (
	ErrEmptyTitle    = errors.New("task name cannot be empty")
	ErrTitleTooLong  = errors.New("task name is too long")
	ErrInvalidFilter = errors.New("invalid filter")
)

// ValidateTitle trims title and checks its length. It returns the trimmed
// title on success.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

// ParseFilter converts a user-supplied filter name into a Filter.
func ParseFilter(s string) (models.Filter, error) {
	f := models.Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "due_soon" || f == "duesoon" {
		f = models.FilterDueSoon
	}
	if !f.Valid() {
		return "", fmt.Errorf("%w %q: must be one of all, active, completed, due-soon", ErrInvalidFilter, s)
	}
	return f, nil
}
