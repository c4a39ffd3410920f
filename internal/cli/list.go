package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

var (
	listFilterFlag string
	listJSON       bool
)

// Deadline styles for plain terminal output. lipgloss drops the colors when
// stdout is not a terminal.
var (
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueSoonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	onTrackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks in display order. Without --filter the saved filter is used
(see 'tm filter'). Positions shown are positions in the full list, so they
can be passed to done, rm, edit and move whatever the filter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		filter := Store.Filter()
		if listFilterFlag != "" {
			f, err := core.ParseFilter(listFilterFlag)
			if err != nil {
				return err
			}
			filter = f
		}

		all := Store.Tasks()
		visible := Store.TasksMatching(filter)

		if listJSON {
			items := make([]listItem, 0, len(visible))
			positions := positionsByID(all)
			for _, t := range visible {
				items = append(items, listItem{
					Position:       positions[t.ID],
					Task:           t,
					DeadlineStatus: Store.DeadlineStatus(t),
				})
			}
			data, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting tasks as JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		renderTaskList(cmd.OutOrStdout(), all, visible, filter)
		return nil
	},
}

type listItem struct {
	Position       int                   `json:"position"`
	Task           models.Task           `json:"task"`
	DeadlineStatus models.DeadlineStatus `json:"deadline_status,omitempty"`
}

func positionsByID(tasks []models.Task) map[string]int {
	m := make(map[string]int, len(tasks))
	for i, t := range tasks {
		m[t.ID] = i + 1
	}
	return m
}

// renderTaskList prints the visible tasks with their full-list positions
// and a summary line.
func renderTaskList(w io.Writer, all, visible []models.Task, filter models.Filter) {
	if len(all) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with 'tm add <title>' or try 'tm sample'.")
		return
	}

	if len(visible) == 0 {
		fmt.Fprintf(w, "No %s tasks.\n", filter)
	} else {
		positions := positionsByID(all)
		for _, t := range visible {
			fmt.Fprintln(w, formatTaskLine(positions[t.ID], t, Store.DeadlineStatus(t)))
		}
	}

	counts := Store.Counts()
	fmt.Fprintf(w, "\n%s  [filter: %s]\n", countsLine(counts), filter)
}

// formatTaskLine renders one task as "  3. [x] Title  (9:00 AM - 5:30 PM) overdue  1a2b3c4d".
func formatTaskLine(pos int, t models.Task, status models.DeadlineStatus) string {
	check := "[ ]"
	title := t.Title
	if t.Completed {
		check = "[x]"
		title = completedStyle.Render(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%3d. %s %s", pos, check, title)

	if span := timeSpan(t, ClockFormat); span != "" {
		fmt.Fprintf(&b, "  (%s)", span)
	}
	if !t.Completed {
		if badge := deadlineBadge(status); badge != "" {
			b.WriteString(" " + badge)
		}
	}
	fmt.Fprintf(&b, "  %s", shortID(t.ID))
	return b.String()
}

// timeSpan renders the start/due pair the way the list shows it.
func timeSpan(t models.Task, clock models.ClockFormat) string {
	start := core.FormatDateTime(t.StartTime, clock)
	due := core.FormatDateTime(t.DueTime, clock)
	switch {
	case start != "" && due != "":
		return start + " - " + due
	case due != "":
		return "due " + due
	case start != "":
		return "starts " + start
	default:
		return ""
	}
}

func deadlineBadge(status models.DeadlineStatus) string {
	switch status {
	case models.DeadlineOverdue:
		return overdueStyle.Render("overdue")
	case models.DeadlineDueSoon:
		return dueSoonStyle.Render("due soon")
	case models.DeadlineOnTrack:
		return onTrackStyle.Render("on track")
	default:
		return ""
	}
}

// countsLine renders "3 tasks left • 2 completed".
func countsLine(c models.TaskCounts) string {
	return fmt.Sprintf("%d %s left • %d completed", c.Active, plural(c.Active, "task", "tasks"), c.Completed)
}

func completeFilters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(models.AllFilters))
	for i, f := range models.AllFilters {
		out[i] = string(f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	listCmd.Flags().StringVarP(&listFilterFlag, "filter", "f", "", "Filter to apply: all, active, completed, due-soon")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output tasks as JSON")
	_ = listCmd.RegisterFlagCompletionFunc("filter", completeFilters)
	rootCmd.AddCommand(listCmd)
}
