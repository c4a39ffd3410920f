package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/observability"
)

var (
	historyType  string
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [task-ref]",
	Short: "Show recent activity from the event log",
	Long: `Show the newest entries of the event log, oldest first.

With a task reference only events about that task are shown. A full id of
a task that has since been removed is accepted too.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTaskRefs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (it may be disabled in .taskconfig)")
		}
		if historyLimit < 0 {
			return fmt.Errorf("limit must not be negative")
		}

		titles := map[string]string{}
		if Store != nil {
			for _, t := range Store.Tasks() {
				titles[t.ID] = t.Title
			}
		}

		filter := observability.EventFilter{Type: historyType, Limit: historyLimit}
		if len(args) == 1 {
			id, err := historyTaskID(args[0])
			if err != nil {
				return err
			}
			filter.TaskID = id
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			if events == nil {
				events = []observability.Event{}
			}
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting history as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No activity recorded.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-15s %s\n",
				e.Time.Local().Format("2006-01-02 15:04"), e.Type, describeEvent(e, titles))
		}
		return nil
	},
}

// historyTaskID resolves ref against the current list, falling back to the
// raw reference so removed tasks can still be looked up by id.
func historyTaskID(ref string) (string, error) {
	if Store == nil {
		return ref, nil
	}
	t, _, err := resolveTaskRef(ref, Store.Tasks())
	if err == nil {
		return t.ID, nil
	}
	if errors.Is(err, ErrTaskNotFound) {
		return ref, nil
	}
	return "", err
}

func describeEvent(e observability.Event, titles map[string]string) string {
	subject := ""
	if id := e.TaskID(); id != "" {
		subject = titles[id]
		if subject == "" {
			if title, ok := e.Data["title"].(string); ok {
				subject = title
			} else {
				subject = shortID(id)
			}
		}
	}

	switch e.Type {
	case "task.added", "task.removed", "task.completed":
		return subject
	case "task.toggled":
		if done, _ := e.Data["completed"].(bool); done {
			return subject + " marked done"
		}
		return subject + " reopened"
	case "task.updated":
		return fmt.Sprintf("%s (%v)", subject, e.Data["field"])
	case "task.reordered":
		return fmt.Sprintf("moved from %v to %v", e.Data["from"], e.Data["to"])
	case "tasks.cleared":
		return fmt.Sprintf("%v completed removed", e.Data["count"])
	case "filter.changed":
		return fmt.Sprintf("filter set to %v", e.Data["filter"])
	}
	if subject != "" {
		return subject
	}
	return e.Message
}

func init() {
	historyCmd.Flags().StringVar(&historyType, "type", "", "Only show events of this type (e.g. task.added)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many events (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output events as JSON")
	rootCmd.AddCommand(historyCmd)
}
