package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/storage"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

var (
	exportFormatFlag string
	exportOutputFlag string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the task list as JSON, YAML or TOML",
	Long: `Write the full state (tasks in order plus the saved filter) to stdout
or to --output. The JSON form is identical to the state file and can be
copied back into place to restore it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		format, err := storage.ParseExportFormat(exportFormatFlag)
		if err != nil {
			return err
		}
		state := models.TaskState{Tasks: Store.Tasks(), Filter: Store.Filter()}

		if exportOutputFlag == "" || exportOutputFlag == "-" {
			return storage.ExportState(cmd.OutOrStdout(), state, format)
		}

		if err := os.MkdirAll(filepath.Dir(exportOutputFlag), 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		f, err := os.OpenFile(exportOutputFlag, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutputFlag, err)
		}
		writeErr := storage.ExportState(f, state, format)
		closeErr := f.Close()
		if writeErr != nil {
			return writeErr
		}
		if closeErr != nil {
			return fmt.Errorf("closing %s: %w", exportOutputFlag, closeErr)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s to %s\n", len(state.Tasks), plural(len(state.Tasks), "task", "tasks"), exportOutputFlag)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "json", "Output format: json, yaml or toml")
	exportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to this file instead of stdout")
	_ = exportCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(storage.ExportFormats))
		for i, f := range storage.ExportFormats {
			out[i] = string(f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(exportCmd)
}
