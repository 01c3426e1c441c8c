// Package cli is the staffplan command tree.
package cli

import (
	"github.com/alexanderramin/staffplan/internal/httpapi"
	"github.com/alexanderramin/staffplan/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// App holds the services and runtime settings the commands use.
type App struct {
	Ledger       service.LedgerService
	Approval     service.ApprovalService
	Batch        service.BatchService
	Availability service.AvailabilityService
	HourChanges  service.HourChangeService
	Directory    service.DirectoryService
	Import       service.ImportService

	Logger *logrus.Logger
	HTTP   HTTPSettings

	// IsInteractive reports whether prompts may be shown for missing input.
	IsInteractive func() bool
}

type HTTPSettings struct {
	Addr           string
	AllowedOrigins []string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) services() httpapi.Services {
	return httpapi.Services{
		Ledger:       a.Ledger,
		Approval:     a.Approval,
		Batch:        a.Batch,
		Availability: a.Availability,
		HourChanges:  a.HourChanges,
		Directory:    a.Directory,
	}
}

// NewRootCmd creates the top-level "staffplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "staffplan",
		Short:         "Consultant hour allocation and approval",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newConsultantCmd(app),
		newProjectCmd(app),
		newPhaseCmd(app),
		newAllocationCmd(app),
		newWeekCmd(app),
		newAvailabilityCmd(app),
		newHoursCmd(app),
	)

	return root
}
