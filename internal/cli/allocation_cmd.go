package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/spf13/cobra"
)

func newAllocationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "allocation",
		Aliases: []string{"alloc"},
		Short:   "Request and approve phase allocations",
	}

	cmd.AddCommand(
		newAllocationRequestCmd(app),
		newAllocationListCmd(app),
		newAllocationShowCmd(app),
		newPhaseEventCmd(app, "approve", "Approve a pending allocation", domain.PhaseEventApprove),
		newAllocationRejectCmd(app),
		newAllocationModifyCmd(app),
		newPhaseEventCmd(app, "request-deletion", "Ask for an approved allocation to be removed", domain.PhaseEventRequestDeletion),
		newAllocationDeleteCmd(app),
		newPhaseEventCmd(app, "keep", "Reject a deletion request", domain.PhaseEventRejectDeletion),
		newPhaseEventCmd(app, "expire", "Mark an allocation as expired", domain.PhaseEventExpire),
		newPhaseEventCmd(app, "forfeit", "Mark an allocation as forfeited", domain.PhaseEventForfeit),
	)
	return cmd
}

func newAllocationRequestCmd(a *App) *cobra.Command {
	var consultant, phase, hours, fromPhase, unplanned, notes string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request hours for a consultant in a phase",
		Long: "Request hours for a consultant in a phase. A request for a pair that\n" +
			"already has a pending allocation is folded into it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			consultantID, err := resolveConsultantID(ctx, a, consultant)
			if err != nil {
				return err
			}
			phaseID, err := resolvePhaseID(ctx, a, phase)
			if err != nil {
				return err
			}
			h, err := parseHours("hours", hours)
			if err != nil {
				return err
			}

			origin := domain.AllocationOrigin{Kind: domain.OriginAssignment}
			if fromPhase != "" {
				fromID, err := resolvePhaseID(ctx, a, fromPhase)
				if err != nil {
					return err
				}
				left, err := optionalHours("unplanned", unplanned)
				if err != nil {
					return err
				}
				src := &domain.ReallocationSource{FromPhaseID: fromID, Notes: notes}
				if left != nil {
					src.UnplannedHours = *left
				}
				origin = domain.AllocationOrigin{Kind: domain.OriginReallocation, Source: src}
			}

			resp, err := a.Ledger.CreateOrMergeAllocation(ctx, app.CreateAllocationRequest{
				ConsultantID: consultantID,
				PhaseID:      phaseID,
				Hours:        h,
				Origin:       origin,
			})
			if err != nil {
				return err
			}

			a := resp.Allocation
			if resp.Merged {
				fmt.Fprintf(cmd.OutOrStdout(), "Merged into pending allocation %s, now %s\n", a.ID, formatter.Hours(a.TotalHours))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested allocation %s for %s\n", a.ID, formatter.Hours(a.TotalHours))
			return nil
		},
	}

	cmd.Flags().StringVar(&consultant, "consultant", "", "Consultant ID or prefix")
	cmd.Flags().StringVar(&phase, "phase", "", "Phase ID or prefix")
	cmd.Flags().StringVar(&hours, "hours", "", "Hours requested")
	cmd.Flags().StringVar(&fromPhase, "from-phase", "", "Phase the hours are reallocated from")
	cmd.Flags().StringVar(&unplanned, "unplanned", "", "Unplanned hours left behind in --from-phase")
	cmd.Flags().StringVar(&notes, "notes", "", "Reallocation notes")
	_ = cmd.MarkFlagRequired("consultant")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newAllocationListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List allocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			allocs, err := app.Ledger.ListAllocations(ctx, domain.PhaseApprovalStatus(strings.ToUpper(status)))
			if err != nil {
				return err
			}
			if len(allocs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No allocations found.")
				return nil
			}
			names, err := lookupNames(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAllocationList(allocs, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only allocations in this status (pending, approved, ...)")
	return cmd
}

// lookupNames maps consultant and phase ids to display names.
func lookupNames(ctx context.Context, app *App) (formatter.Names, error) {
	names := formatter.Names{Consultants: map[string]string{}, Phases: map[string]string{}}

	consultants, err := app.Directory.ListConsultants(ctx)
	if err != nil {
		return names, err
	}
	for _, c := range consultants {
		names.Consultants[c.ID] = c.DisplayName()
	}

	projects, err := app.Directory.ListProjects(ctx)
	if err != nil {
		return names, err
	}
	for _, p := range projects {
		phases, err := app.Directory.ListPhases(ctx, p.ID)
		if err != nil {
			return names, err
		}
		for _, ph := range phases {
			names.Phases[ph.ID] = p.Name + " / " + ph.Name
		}
	}
	return names, nil
}

func newAllocationShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an allocation with its weeks and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveAllocationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			detail, err := app.Ledger.GetAllocation(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAllocationDetail(detail))
			return nil
		},
	}
}

func newPhaseEventCmd(a *App, use, short string, event domain.PhaseEvent) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhaseAction(cmd, a, args[0], app.PhaseActionRequest{Action: event})
		},
	}
}

func runPhaseAction(cmd *cobra.Command, a *App, input string, req app.PhaseActionRequest) error {
	ctx := cmd.Context()
	id, err := resolveAllocationID(ctx, a, input)
	if err != nil {
		return err
	}
	req.AllocationID = id

	resp, err := a.Approval.ApplyPhaseAction(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case resp.Deleted:
		fmt.Fprintf(out, "Deleted allocation %s\n", id)
	case resp.MergedIntoID != "":
		fmt.Fprintf(out, "Approved and merged into %s, now %s\n", resp.MergedIntoID, formatter.Hours(resp.Allocation.TotalHours))
	default:
		fmt.Fprintf(out, "Allocation %s is %s\n", id, formatter.PhaseStatusPill(resp.Allocation.ApprovalStatus))
	}
	return nil
}

func newAllocationRejectCmd(a *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, err := promptReason(a, reason, "Why is this allocation rejected?")
			if err != nil {
				return err
			}
			return runPhaseAction(cmd, a, args[0], app.PhaseActionRequest{
				Action:          domain.PhaseEventReject,
				RejectionReason: reason,
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (at least 10 characters)")
	return cmd
}

func newAllocationModifyCmd(a *App) *cobra.Command {
	var hours, reason string
	var approve bool

	cmd := &cobra.Command{
		Use:   "modify ID",
		Short: "Change an allocation's hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHours("hours", hours)
			if err != nil {
				return err
			}
			event := domain.PhaseEventModify
			if approve {
				event = domain.PhaseEventModifyAndApprove
			}
			return runPhaseAction(cmd, a, args[0], app.PhaseActionRequest{
				Action:             event,
				ModifiedHours:      &h,
				ModificationReason: reason,
			})
		},
	}

	cmd.Flags().StringVar(&hours, "hours", "", "New total hours")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the hours changed")
	cmd.Flags().BoolVar(&approve, "approve", false, "Approve a pending allocation with the new hours")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newAllocationDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an allocation awaiting deletion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(a, yes, "Delete allocation "+args[0]+" and its weeks?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return runPhaseAction(cmd, a, args[0], app.PhaseActionRequest{Action: domain.PhaseEventDelete})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
