package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-ref>...",
	Short: "Toggle tasks between completed and open",
	Long: `Flip the completed flag of each referenced task. Running done on a
completed task reopens it.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskRefs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		targets, err := resolveTaskRefs(args, Store.Tasks())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, t := range targets {
			ok, err := Store.ToggleCompleted(t.ID)
			if err != nil {
				return fmt.Errorf("toggling task %s: %w", shortID(t.ID), err)
			}
			if !ok {
				fmt.Fprintf(out, "Task %s no longer exists, skipped\n", shortID(t.ID))
				continue
			}
			if t.Completed {
				fmt.Fprintf(out, "Reopened: %s\n", t.Title)
			} else {
				fmt.Fprintf(out, "Completed: %s\n", t.Title)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
