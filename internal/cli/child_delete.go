package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/client"
	"github.com/terraincognita07/kpitracker/internal/models"
)

type childDeleteContext struct {
	ctx  context.Context
	api  *client.Client
	date string
	id   string
}

func newChildDeleteCommand(opts *options, noun string, remove func(childDeleteContext) (models.DailyEntry, error)) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cfg, err := opts.apiClient()
			if err != nil {
				return err
			}
			day, err := opts.dateFlag(cfg, date)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			entry, err := remove(childDeleteContext{ctx: ctx, api: api, date: day, id: args[0]})
			if err != nil {
				return describeAPIError("delete "+noun, err)
			}
			printEntrySummary(cmd.OutOrStdout(), "Deleted "+noun, entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day of the record (YYYY-MM-DD, default today)")
	return cmd
}
