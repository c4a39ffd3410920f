package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all completed tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		n, err := Store.ClearCompleted()
		if err != nil {
			return fmt.Errorf("clearing completed tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if n == 0 {
			fmt.Fprintln(out, "No completed tasks to clear.")
			return nil
		}
		fmt.Fprintf(out, "Cleared %d completed %s.\n", n, plural(n, "task", "tasks"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
