package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/observability"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarise the list and flag overdue or due-soon tasks",
	Long: `Print task counts by state followed by alerts for open tasks that are
overdue or due soon, and a warning when the number of open tasks grows
past the configured limit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		counts := Store.Counts()
		var alerts []observability.Alert
		if AlertEngine != nil {
			alerts = AlertEngine.Evaluate(Store.Tasks(), nowFunc())
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			data, err := json.MarshalIndent(statusReport{
				Filter: Store.Filter(),
				Counts: counts,
				Alerts: alerts,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting status as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintln(out, countsLine(counts))
		fmt.Fprintf(out, "  %-12s %d\n", "Total:", counts.Total)
		fmt.Fprintf(out, "  %-12s %d\n", "Active:", counts.Active)
		fmt.Fprintf(out, "  %-12s %d\n", "Completed:", counts.Completed)
		fmt.Fprintf(out, "  %-12s %d\n", "Due soon:", counts.DueSoon)
		fmt.Fprintf(out, "  %-12s %d\n", "Overdue:", counts.Overdue)
		fmt.Fprintf(out, "  %-12s %s\n", "Filter:", Store.Filter())

		if len(alerts) == 0 {
			return nil
		}
		fmt.Fprintf(out, "\nAlerts (%d):\n", len(alerts))
		for _, a := range alerts {
			fmt.Fprintf(out, "  %s %s\n", severityLabel(a.Severity), a.Message)
		}
		return nil
	},
}

type statusReport struct {
	Filter models.Filter         `json:"filter"`
	Counts models.TaskCounts     `json:"counts"`
	Alerts []observability.Alert `json:"alerts"`
}

func severityLabel(s observability.AlertSeverity) string {
	label := fmt.Sprintf("[%s]", strings.ToUpper(string(s)))
	switch s {
	case observability.SeverityHigh:
		return overdueStyle.Render(label)
	case observability.SeverityMedium:
		return dueSoonStyle.Render(label)
	default:
		return onTrackStyle.Render(label)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
