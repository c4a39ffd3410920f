package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tm",
	Short: "taskmaster - a local task tracker",
	Long: `taskmaster (tm) keeps an ordered to-do list on your machine.

Tasks have a title, a completed flag and optional start and due times.
Lists can be filtered (all, active, completed, due-soon), reordered and
browsed interactively with 'tm ui'. State is stored as JSON under the
directory named by TM_HOME (or the nearest directory holding .taskconfig).

Tasks are referenced by their position in 'tm list' or by an id prefix.
A number larger than the list is tried as an id prefix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tm %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
