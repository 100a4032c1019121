package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view [PROJECT]",
		Short: "Browse the month chart interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("view needs a terminal; use `timeline chart` instead")
			}
			var rootID *string
			if len(args) == 1 {
				id, err := resolveProjectID(context.Background(), app, args[0])
				if err != nil {
					return err
				}
				rootID = &id
			}
			_, err := tea.NewProgram(newViewerModel(app, rootID), tea.WithAltScreen()).Run()
			return err
		},
	}
}
