package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sampleForce bool

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Add a handful of sample tasks",
	Long: `Add the sample tasks offered on an empty list. Refuses to run when the
list already has tasks unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}
		if n := len(Store.Tasks()); n > 0 && !sampleForce {
			return fmt.Errorf("list already has %d %s (use --force to add samples anyway)", n, plural(n, "task", "tasks"))
		}

		n, err := Store.AddSampleTasks()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample tasks.\n", n)
		return nil
	},
}

func init() {
	sampleCmd.Flags().BoolVar(&sampleForce, "force", false, "Add samples even if the list is not empty")
	rootCmd.AddCommand(sampleCmd)
}
