package cli

import (
	"net/http"
	"time"

	"github.com/phaseboard/timeline/internal/config"
	"github.com/phaseboard/timeline/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings the commands run against.
type App struct {
	Phases   service.PhaseService
	Transfer service.TransferService
	Config   *config.Config

	// Handler serves `timeline serve`. Nil disables the command.
	Handler http.Handler

	// IsInteractive reports whether stdin is a terminal; forms and the
	// viewer only run when it does.
	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "timeline" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timeline",
		Short:         "Phases and projects on a calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newPhaseCmd(app),
		newMonthCmd(app),
		newChartCmd(app),
		newViewCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
	)

	return root
}
