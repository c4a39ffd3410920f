package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ErrTaskNotFound indicates no task id matches the reference.
var ErrTaskNotFound = errors.New("task not found")

// resolveTaskRef finds the task a reference points at. Resolution rules:
//  1. all digits within the list length: 1-based position in the full list
//  2. otherwise: exact task id, then a unique id prefix
//
// An all-digit reference past the end of the list still matches ids, so a
// UUID starting with digits stays reachable by prefix.
//
// It returns the task and its zero-based index in tasks.
func resolveTaskRef(ref string, tasks []models.Task) (models.Task, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, -1, ErrTaskRefRequired
	}

	if isAllDigits(ref) {
		pos, err := strconv.Atoi(ref)
		if err == nil && pos >= 1 && pos <= len(tasks) {
			return tasks[pos-1], pos - 1, nil
		}
		t, idx, idErr := resolveTaskID(ref, tasks)
		if errors.Is(idErr, ErrTaskNotFound) {
			return models.Task{}, -1, fmt.Errorf("no task at position %s (list has %d %s)", ref, len(tasks), plural(len(tasks), "task", "tasks"))
		}
		return t, idx, idErr
	}
	return resolveTaskID(ref, tasks)
}

// resolveTaskID matches ref as an exact id, then as a unique id prefix.
func resolveTaskID(ref string, tasks []models.Task) (models.Task, int, error) {
	for i, t := range tasks {
		if t.ID == ref {
			return t, i, nil
		}
	}

	match := -1
	for i, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match >= 0 {
				return models.Task{}, -1, fmt.Errorf("ambiguous task reference %q: matches %s and %s", ref, shortID(tasks[match].ID), shortID(t.ID))
			}
			match = i
		}
	}
	if match < 0 {
		return models.Task{}, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}
	return tasks[match], match, nil
}

// resolveTaskRefs resolves every reference up front so that positions keep
// referring to the list as the user saw it.
func resolveTaskRefs(refs []string, tasks []models.Task) ([]models.Task, error) {
	if len(refs) == 0 {
		return nil, ErrTaskRefRequired
	}
	seen := make(map[string]bool, len(refs))
	out := make([]models.Task, 0, len(refs))
	for _, ref := range refs {
		t, _, err := resolveTaskRef(ref, tasks)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// completeTaskRefs offers list positions with titles as descriptions.
func completeTaskRefs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tasks := Store.Tasks()
	out := make([]string, 0, len(tasks))
	for i, t := range tasks {
		out = append(out, fmt.Sprintf("%d\t%s", i+1, t.Title))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
