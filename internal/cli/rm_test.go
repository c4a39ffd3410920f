package cli

import (
	"strings"
	"testing"
)

func TestRmCommand(t *testing.T) {
	store := withTestStore(t)
	mustAdd(t, store, "keep")
	mustAdd(t, store, "drop")

	out, err := runCLI(t, "rm", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Removed: drop") {
		t.Errorf("unexpected output: %q", out)
	}
	if got := titles(store.Tasks()); len(got) != 1 || got[0] != "keep" {
		t.Errorf("tasks = %v, want [keep]", got)
	}
}

func TestRmCommand_AliasAndPositionsFromOriginalList(t *testing.T) {
	store := withTestStore(t)
	mustAdd(t, store, "c")
	mustAdd(t, store, "b")
	mustAdd(t, store, "a")

	// Positions 1 and 2 refer to the list before anything is removed.
	if _, err := runCLI(t, "remove", "1", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := titles(store.Tasks()); len(got) != 1 || got[0] != "c" {
		t.Errorf("tasks = %v, want [c]", got)
	}
}

func TestRmCommand_RequiresRef(t *testing.T) {
	withTestStore(t)

	if _, err := runCLI(t, "rm"); err == nil {
		t.Error("expected error without a task reference")
	}
}
