package cli

import (
	"fmt"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/spf13/cobra"
)

func newConsultantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consultant",
		Short: "Manage consultants",
	}
	cmd.AddCommand(
		newConsultantAddCmd(app),
		newConsultantListCmd(app),
	)
	return cmd
}

func newConsultantAddCmd(app *App) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a consultant",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Directory.CreateConsultant(cmd.Context(), name, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created consultant %s (%s)\n", c.DisplayName(), c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newConsultantListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List consultants",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Directory.ListConsultants(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No consultants found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatConsultants(list))
			return nil
		},
	}
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectImportCmd(app),
	)
	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Directory.CreateProject(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Directory.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjects(list))
			return nil
		},
	}
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project, its phases, and hour requests from a JSON plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported project %s (%s)\n", res.Project.Name, res.Project.ID)
			fmt.Fprintf(out, "  %d phases, %d consultants created, %d reused\n",
				res.PhaseCount, res.ConsultantsCreated, res.ConsultantsReused)
			if len(res.Allocations) == 0 {
				return nil
			}
			names, err := lookupNames(cmd.Context(), app)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatAllocationList(res.Allocations, names))
			return nil
		},
	}
}

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage project phases",
	}
	cmd.AddCommand(
		newPhaseAddCmd(app),
		newPhaseListCmd(app),
	)
	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var project, name, start, end string
	var order int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dated phase to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			startDate, err := domain.ParseDate(start)
			if err != nil {
				return err
			}
			endDate, err := domain.ParseDate(end)
			if err != nil {
				return err
			}

			p := &domain.Phase{
				ProjectID:  projectID,
				Name:       name,
				StartDate:  startDate,
				EndDate:    endDate,
				OrderIndex: order,
			}
			if err := app.Directory.CreatePhase(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created phase %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID, prefix or name")
	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&order, "order", 0, "Position within the project")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newPhaseListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			list, err := app.Directory.ListPhases(ctx, projectID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No phases found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhases(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID, prefix or name")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
