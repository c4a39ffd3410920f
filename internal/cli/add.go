package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/core"
)

var (
	addStartFlag string
	addDueFlag   string
)

var addCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Add a task to the top of the list",
	Long: `Add a task with the given title. The words of the title may be passed
as separate arguments; they are joined with spaces.

Start and due times accept a time of day ("2:30 PM", "14:30") anchored to
today, a local date and time ("2026-05-01 09:00") or an RFC 3339 timestamp.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		now := nowFunc()
		start, err := parseTimeFlag("--start", addStartFlag, now)
		if err != nil {
			return err
		}
		due, err := parseTimeFlag("--due", addDueFlag, now)
		if err != nil {
			return err
		}

		task, err := Store.AddTask(strings.Join(args, " "), start, due)
		if err != nil {
			if errors.Is(err, core.ErrEmptyTitle) || errors.Is(err, core.ErrTitleTooLong) {
				return err
			}
			return fmt.Errorf("adding task: %w", err)
		}
		logger().Debug("task added", "id", task.ID)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added task %s\n", shortID(task.ID))
		fmt.Fprintf(out, "  Title: %s\n", task.Title)
		if task.StartTime != nil {
			fmt.Fprintf(out, "  Start: %s\n", core.FormatDateTime(task.StartTime, ClockFormat))
		}
		if task.DueTime != nil {
			fmt.Fprintf(out, "  Due:   %s\n", core.FormatDateTime(task.DueTime, ClockFormat))
		}
		return nil
	},
}

// parseTimeFlag parses an optional time flag value. An empty value means
// the flag was not given.
func parseTimeFlag(flag, value string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, ok := core.ParseTimeInput(value, now)
	if !ok {
		return nil, fmt.Errorf("invalid %s value %q (use e.g. 2:30 PM, 14:30 or 2026-05-01 09:00)", flag, value)
	}
	return t, nil
}

func init() {
	addCmd.Flags().StringVar(&addStartFlag, "start", "", "Start time (e.g. 9:00 AM, 2026-05-01 09:00)")
	addCmd.Flags().StringVar(&addDueFlag, "due", "", "Due time (e.g. 5:30 PM, 2026-05-01 17:30)")
	rootCmd.AddCommand(addCmd)
}
