package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/spf13/cobra"
)

func newHoursCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Request changes to approved allocations",
	}

	cmd.AddCommand(
		newHoursAdjustCmd(a),
		newHoursShiftCmd(a),
		newHoursListCmd(a),
		newHoursDecideCmd(a, true),
		newHoursDecideCmd(a, false),
	)
	return cmd
}

func createHourChange(cmd *cobra.Command, a *App, allocation string, req app.HourChangeRequest) error {
	ctx := cmd.Context()
	id, err := resolveAllocationID(ctx, a, allocation)
	if err != nil {
		return err
	}
	req.PhaseAllocationID = id

	hc, err := a.HourChanges.Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s request %s\n", strings.ToLower(string(hc.ChangeType)), hc.ID)
	return nil
}

func newHoursAdjustCmd(a *App) *cobra.Command {
	var allocation, hours, reason string

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Ask for a new total budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHours("hours", hours)
			if err != nil {
				return err
			}
			return createHourChange(cmd, a, allocation, app.HourChangeRequest{
				ChangeType:     domain.HourChangeAdjustment,
				RequestedHours: h,
				Reason:         reason,
			})
		},
	}

	cmd.Flags().StringVar(&allocation, "allocation", "", "Allocation ID or prefix")
	cmd.Flags().StringVar(&hours, "hours", "", "Requested total hours")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the budget should change")
	_ = cmd.MarkFlagRequired("allocation")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newHoursShiftCmd(a *App) *cobra.Command {
	var allocation, hours, from, to, reason string

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Ask to move hours from one week to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHours("hours", hours)
			if err != nil {
				return err
			}
			fromWeek, err := domain.ParseDate(from)
			if err != nil {
				return err
			}
			toWeek, err := domain.ParseDate(to)
			if err != nil {
				return err
			}
			return createHourChange(cmd, a, allocation, app.HourChangeRequest{
				ChangeType:     domain.HourChangeShift,
				RequestedHours: h,
				FromWeekStart:  &fromWeek,
				ToWeekStart:    &toWeek,
				Reason:         reason,
			})
		},
	}

	cmd.Flags().StringVar(&allocation, "allocation", "", "Allocation ID or prefix")
	cmd.Flags().StringVar(&hours, "hours", "", "Hours to move")
	cmd.Flags().StringVar(&from, "from", "", "Source week (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Target week (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the hours move")
	for _, f := range []string{"allocation", "hours", "from", "to", "reason"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newHoursListCmd(a *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hour change requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.HourChanges.List(cmd.Context(), domain.HourChangeStatus(strings.ToUpper(status)))
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hour change requests found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatHourChanges(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only requests in this status")
	return cmd
}

func newHoursDecideCmd(a *App, approve bool) *cobra.Command {
	var reason string

	use, short := "approve ID", "Approve and apply an hour change request"
	if !approve {
		use, short = "reject ID", "Reject an hour change request"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.HourChanges.List(ctx, domain.HourChangePending)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(list))
			for _, hc := range list {
				ids = append(ids, hc.ID)
			}
			id, err := matchID("hour change", args[0], ids)
			if err != nil {
				return err
			}

			if !approve {
				if reason, err = promptReason(a, reason, "Why is this change rejected?"); err != nil {
					return err
				}
			}

			hc, err := a.HourChanges.Decide(ctx, app.HourChangeDecision{ID: id, Approve: approve, RejectionReason: reason})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is %s\n", hc.ID, strings.ToLower(string(hc.Status)))
			return nil
		},
	}

	if !approve {
		cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	}
	return cmd
}
