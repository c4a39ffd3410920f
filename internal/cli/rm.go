package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:               "rm <task-ref>...",
	Aliases:           []string{"remove"},
	Short:             "Delete tasks",
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
			ok, err := Store.RemoveTask(t.ID)
			if err != nil {
				return fmt.Errorf("removing task %s: %w", shortID(t.ID), err)
			}
			if ok {
				fmt.Fprintf(out, "Removed: %s\n", t.Title)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
