package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/spf13/cobra"
)

func newAvailabilityCmd(a *App) *cobra.Command {
	var start, end, excludeProject, scale string
	var consultants []string
	var weeks int

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show weekly load per consultant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if weeks < 1 {
				return domain.Validationf("--weeks must be at least 1")
			}

			from := domain.WeekStart(time.Now().UTC())
			if start != "" {
				d, err := domain.ParseDate(start)
				if err != nil {
					return err
				}
				from = d
			}
			to := from.AddDate(0, 0, 7*weeks-1)
			if end != "" {
				d, err := domain.ParseDate(end)
				if err != nil {
					return err
				}
				to = d
			}

			req := app.AvailabilityRequest{Start: from, End: to, Scale: scale}
			if excludeProject != "" {
				id, err := resolveProjectID(ctx, a, excludeProject)
				if err != nil {
					return err
				}
				req.ExcludeProjectID = id
			}
			for _, c := range consultants {
				id, err := resolveConsultantID(ctx, a, c)
				if err != nil {
					return err
				}
				req.ConsultantIDs = append(req.ConsultantIDs, id)
			}

			resp, err := a.Availability.Availability(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAvailability(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD, default this week's Monday)")
	cmd.Flags().StringVar(&end, "end", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&weeks, "weeks", 6, "Weeks to show when --end is not given")
	cmd.Flags().StringVar(&excludeProject, "exclude-project", "", "Leave one project's hours out")
	cmd.Flags().StringSliceVar(&consultants, "consultant", nil, "Only these consultants")
	cmd.Flags().StringVar(&scale, "scale", "", "Week scale: detail or fleet")
	return cmd
}
