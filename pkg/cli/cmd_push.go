package cli

import (
	"fmt"

	"github.com/harrisonrobin/baronboard/pkg/google"
	"github.com/harrisonrobin/baronboard/pkg/index"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPushCmd(o *rootOptions) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish task due dates to Google Calendar",
		Long: `Publish one all-day event per task with a due date. Titles carry a status
marker (✓ completed, ! delayed, + new task) and events are colored by
status. Events already published are updated in place when the task
changes; the mapping is kept in ~/.config/baronboard/events.json. With
--prune, published events whose task is gone from the sheet (or whose
task, requester or start date was edited) are deleted.`,
		Example: `  baronboard push -i tasks.xlsx --calendar Tasks
  baronboard push --drive-file 1AbC... --calendar primary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			rep, err := o.loadReport(ctx, cfg, o.now())
			if err != nil {
				return err
			}

			services, err := o.googleServices(ctx)
			if err != nil {
				return err
			}
			calendarID, err := google.FindCalendar(ctx, services.Calendar, cfg.Calendar)
			if err != nil {
				return err
			}

			path, err := index.DefaultPath()
			if err != nil {
				return err
			}
			idx, err := index.NewEventIndex(path)
			if err != nil {
				zap.S().Warnf("could not load event index, searching the calendar instead: %v", err)
				idx = nil
			}

			client := google.NewCalendarClient(services.Calendar, calendarID, idx)
			stats, pushErr := client.Push(ctx, rep.Records)
			if pushErr == nil && prune {
				stats.Deleted, pushErr = client.Prune(ctx, rep.Records)
			}
			if idx != nil {
				if err := idx.Save(); err != nil {
					zap.S().Errorf("could not save event index: %v", err)
				}
			}
			if pushErr != nil {
				return pushErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d updated, %d unchanged, %d deleted, %d without due date, %d failed\n",
				cfg.Calendar, stats.Created, stats.Patched, stats.Unchanged, stats.Deleted, stats.Skipped, stats.Failed)
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d events could not be published", stats.Failed, len(rep.Records)-stats.Skipped)
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().String("calendar", "Tasks", "calendar name or ID")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete events of tasks no longer in the sheet")
	return cmd
}
