package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/spf13/cobra"
)

func newWeekCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Submit and approve weekly hours",
	}

	cmd.AddCommand(
		newWeekSubmitCmd(a),
		newWeekPendingCmd(a),
		newWeekApproveCmd(a),
		newWeekModifyCmd(a),
		newWeekRejectCmd(a),
		newWeekBatchCmd(a),
	)
	return cmd
}

// parseWeekEntries reads DATE=HOURS pairs ordered by week.
func parseWeekEntries(entries []string, note string) ([]app.WeekHours, error) {
	weeks := make([]app.WeekHours, 0, len(entries))
	for _, e := range entries {
		date, hours, ok := strings.Cut(e, "=")
		if !ok {
			return nil, domain.Validationf("--week %q must be DATE=HOURS", e)
		}
		start, err := domain.ParseDate(strings.TrimSpace(date))
		if err != nil {
			return nil, err
		}
		h, err := parseHours("week", hours)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, app.WeekHours{WeekStart: start, Hours: h, ConsultantDescription: note})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.Before(weeks[j].WeekStart) })
	return weeks, nil
}

func newWeekSubmitCmd(a *App) *cobra.Command {
	var allocation, note string
	var entries []string
	var clearRejection bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Propose hours for one or more weeks",
		Example: "  staffplan week submit --allocation 3f2a --week 2025-03-03=8\n" +
			"  staffplan week submit --allocation 3f2a --week 2025-03-03=8 --week 2025-03-10=6.5",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveAllocationID(ctx, a, allocation)
			if err != nil {
				return err
			}
			weeks, err := parseWeekEntries(entries, note)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(weeks) == 1 {
				w, err := a.Ledger.SubmitWeeklyHours(ctx, app.SubmitWeekRequest{
					PhaseAllocationID:     id,
					WeekStart:             weeks[0].WeekStart,
					Hours:                 weeks[0].Hours,
					ClearRejection:        clearRejection,
					ConsultantDescription: note,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Submitted %s for %s\n", formatter.NullHours(w.ProposedHours), formatter.WeekLabel(w.WeekStartDate))
				return nil
			}

			resp, err := a.Ledger.SubmitWeeks(ctx, app.SubmitWeeksRequest{
				PhaseAllocationID: id,
				Weeks:             weeks,
				ClearRejection:    clearRejection,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Submitted %d weeks in batch %s\n", len(resp.Weeks), resp.SubmissionBatchID)
			fmt.Fprint(out, formatter.FormatWeeks(resp.Weeks))
			return nil
		},
	}

	cmd.Flags().StringVar(&allocation, "allocation", "", "Allocation ID or prefix")
	cmd.Flags().StringArrayVar(&entries, "week", nil, "Week and hours as DATE=HOURS (repeatable)")
	cmd.Flags().StringVar(&note, "note", "", "Description of the planned work")
	cmd.Flags().BoolVar(&clearRejection, "clear-rejection", false, "Resubmit a rejected week")
	_ = cmd.MarkFlagRequired("allocation")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newWeekPendingCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List submissions waiting for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.Approval.ListPendingSubmissions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPendingSubmissions(groups, time.Now()))
			return nil
		},
	}
}

func runWeeklyAction(cmd *cobra.Command, a *App, input string, req app.WeeklyActionRequest) error {
	ctx := cmd.Context()
	id, err := resolveWeekID(ctx, a, input)
	if err != nil {
		return err
	}
	req.WeeklyAllocationID = id

	w, err := a.Approval.ApplyWeeklyAction(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
		formatter.WeekLabel(w.WeekStartDate), formatter.WeekStatusPill(w.PlanningStatus), formatter.NullHours(w.ApprovedHours))
	return nil
}

func newWeekApproveCmd(a *App) *cobra.Command {
	var hours string

	cmd := &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a week's proposed hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := optionalHours("hours", hours)
			if err != nil {
				return err
			}
			return runWeeklyAction(cmd, a, args[0], app.WeeklyActionRequest{
				Action:        domain.WeeklyEventApprove,
				ApprovedHours: h,
			})
		},
	}

	cmd.Flags().StringVar(&hours, "hours", "", "Approve a different amount (records a modification)")
	return cmd
}

func newWeekModifyCmd(a *App) *cobra.Command {
	var hours string

	cmd := &cobra.Command{
		Use:   "modify ID",
		Short: "Approve a week with changed hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHours("hours", hours)
			if err != nil {
				return err
			}
			return runWeeklyAction(cmd, a, args[0], app.WeeklyActionRequest{
				Action:        domain.WeeklyEventModify,
				ApprovedHours: &h,
			})
		},
	}

	cmd.Flags().StringVar(&hours, "hours", "", "Approved hours")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newWeekRejectCmd(a *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Send a week back to the consultant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, err := promptReason(a, reason, "Why is this week rejected?")
			if err != nil {
				return err
			}
			return runWeeklyAction(cmd, a, args[0], app.WeeklyActionRequest{
				Action:          domain.WeeklyEventReject,
				RejectionReason: reason,
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (at least 10 characters)")
	return cmd
}

func newWeekBatchCmd(a *App) *cobra.Command {
	var reject, all bool
	var reason string

	cmd := &cobra.Command{
		Use:   "batch [ID...]",
		Short: "Approve or reject many weeks at once",
		Long: "Approve or reject many weeks at once. Each week is decided on its own;\n" +
			"weeks that cannot be decided are reported and the rest still apply.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var ids []string
			if all {
				groups, err := a.Approval.ListPendingSubmissions(ctx)
				if err != nil {
					return err
				}
				for _, g := range groups {
					for _, w := range g.Weeks {
						ids = append(ids, w.Week.ID)
					}
				}
			} else {
				for _, arg := range args {
					id, err := resolveWeekID(ctx, a, arg)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				return domain.Validationf("no weeks given: pass IDs or --all")
			}

			req := app.BatchRequest{DefaultAction: domain.WeeklyEventApprove}
			if reject {
				r, err := promptReason(a, reason, "Why are these weeks rejected?")
				if err != nil {
					return err
				}
				req.DefaultAction = domain.WeeklyEventReject
				req.RejectionReason = r
			}
			for _, id := range ids {
				req.Items = append(req.Items, app.BatchItem{ID: id})
			}

			resp, err := a.Batch.ApproveBatch(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBatchResult(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Decide every pending week")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject instead of approve")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason for --reject")
	return cmd
}
