package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/changetrack/tracker"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the change tracking table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tracker.EnsureSchema(cmd.Context(), a.db, a.dialect, a.cfg.Table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %s ready\n", a.cfg.Table)
			return nil
		},
	}
}

func newObserveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "observe <namespace> <id> <changed>",
		Short: "Record that a record was indexed; changed is RFC 3339",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := time.Parse(time.RFC3339Nano, args[2])
			if err != nil {
				return fmt.Errorf("invalid change time %q: %w", args[2], err)
			}
			if err := a.tracker.Observe(cmd.Context(), args[0], args[1], changed); err != nil {
				return err
			}
			first, err := a.tracker.FirstIndexed()
			if err != nil {
				return err
			}
			last, err := a.tracker.LastIndexed()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "first_indexed=%s last_indexed=%s\n", first, last)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <namespace> <id>",
		Short: "Mark a record deleted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tracker.MarkDeleted(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", args[0], args[1])
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <namespace> <id>",
		Short: "Print the stored tracking row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, found, err := a.store.Lookup(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s/%s", tracker.ErrNotFound, args[0], args[1])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "namespace:          %s\n", rec.Namespace)
			fmt.Fprintf(out, "id:                 %s\n", rec.ID)
			fmt.Fprintf(out, "first_indexed:      %s\n", formatOptional(rec.FirstIndexed))
			fmt.Fprintf(out, "last_indexed:       %s\n", tracker.FormatISO8601(rec.LastIndexed))
			fmt.Fprintf(out, "last_record_change: %s\n", tracker.FormatISO8601(rec.LastRecordChange))
			deleted := "-"
			if rec.Deleted != nil {
				deleted = tracker.FormatISO8601(*rec.Deleted)
			}
			fmt.Fprintf(out, "deleted:            %s\n", deleted)
			return nil
		},
	}
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return tracker.FormatISO8601(t)
}
