package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/core"
)

var filterCmd = &cobra.Command{
	Use:   "filter [all|active|completed|due-soon]",
	Short: "Show or set the saved filter",
	Long: `Without an argument, print the saved filter. With one, save it; 'tm list'
and 'tm ui' start from the saved filter.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeFilters,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintln(out, Store.Filter())
			return nil
		}

		f, err := core.ParseFilter(args[0])
		if err != nil {
			return err
		}
		if err := Store.SetFilter(f); err != nil {
			return fmt.Errorf("setting filter: %w", err)
		}
		fmt.Fprintf(out, "Filter set to %s\n", f)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
}
