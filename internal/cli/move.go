package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <task-ref> <position>",
	Short: "Move a task to another position in the list",
	Long: `Move a task to the given 1-based position in the full list, shifting
the tasks in between.

  tm move 5 1      # bring the fifth task to the top`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskRefs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		tasks := Store.Tasks()
		task, from, err := resolveTaskRef(args[0], tasks)
		if err != nil {
			return err
		}

		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q: must be a number", args[1])
		}
		if to < 1 || to > len(tasks) {
			return fmt.Errorf("position %d out of range (1-%d)", to, len(tasks))
		}

		moved, err := Store.Reorder(from, to-1)
		if err != nil {
			return fmt.Errorf("moving task %s: %w", shortID(task.ID), err)
		}
		if !moved {
			return fmt.Errorf("position %d out of range (1-%d)", to, len(Store.Tasks()))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Moved %q from %d to %d\n", task.Title, from+1, to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
