package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/core"
)

var (
	editTitleFlag      string
	editStartFlag      string
	editDueFlag        string
	editClearStartFlag bool
	editClearDueFlag   bool
)

var editCmd = &cobra.Command{
	Use:   "edit <task-ref>",
	Short: "Change a task's title or times",
	Long: `Change the title and/or the start and due times of a task.

Only the flags you pass are changed. Use --clear-start and --clear-due to
remove a time.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskRefs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		flags := cmd.Flags()
		if !flags.Changed("title") && !flags.Changed("start") && !flags.Changed("due") &&
			!editClearStartFlag && !editClearDueFlag {
			return fmt.Errorf("nothing to change: pass --title, --start, --due, --clear-start or --clear-due")
		}
		if flags.Changed("start") && editClearStartFlag {
			return fmt.Errorf("--start and --clear-start cannot be used together")
		}
		if flags.Changed("due") && editClearDueFlag {
			return fmt.Errorf("--due and --clear-due cannot be used together")
		}

		task, _, err := resolveTaskRef(args[0], Store.Tasks())
		if err != nil {
			return err
		}

		now := nowFunc()
		var patch core.TaskPatch
		if flags.Changed("title") {
			patch.Title = &editTitleFlag
		}
		if flags.Changed("start") {
			if patch.StartTime, err = parseTimeFlag("--start", editStartFlag, now); err != nil {
				return err
			}
			patch.SetStart = true
		}
		if flags.Changed("due") {
			if patch.DueTime, err = parseTimeFlag("--due", editDueFlag, now); err != nil {
				return err
			}
			patch.SetDue = true
		}
		if editClearStartFlag {
			patch.SetStart, patch.StartTime = true, nil
		}
		if editClearDueFlag {
			patch.SetDue, patch.DueTime = true, nil
		}

		found, err := Store.UpdateTask(task.ID, patch)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", shortID(task.ID), err)
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
		}

		updated, ok := Store.GetTask(task.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Updated task %s\n", shortID(updated.ID))
		fmt.Fprintf(out, "  Title: %s\n", updated.Title)
		if span := timeSpan(*updated, ClockFormat); span != "" {
			fmt.Fprintf(out, "  Time:  %s\n", span)
		}
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editTitleFlag, "title", "", "New title")
	editCmd.Flags().StringVar(&editStartFlag, "start", "", "New start time")
	editCmd.Flags().StringVar(&editDueFlag, "due", "", "New due time")
	editCmd.Flags().BoolVar(&editClearStartFlag, "clear-start", false, "Remove the start time")
	editCmd.Flags().BoolVar(&editClearDueFlag, "clear-due", false, "Remove the due time")
	rootCmd.AddCommand(editCmd)
}
