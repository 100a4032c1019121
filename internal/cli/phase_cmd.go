package cli

import (
	"context"
	"fmt"

	"github.com/phaseboard/timeline/internal/cli/formatter"
	"github.com/phaseboard/timeline/internal/service"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage phases inside a project",
	}

	cmd.AddCommand(
		newPhaseAddCmd(app),
		newPhaseShowCmd(app),
		newPhaseEditCmd(app),
		newPhaseMoveCmd(app, "up", "Move a phase one place earlier among its siblings", service.PhaseService.MoveUp),
		newPhaseMoveCmd(app, "down", "Move a phase one place later among its siblings", service.PhaseService.MoveDown),
		newPhaseRemoveCmd(app),
	)

	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var parent, title string
	var startV *dateValue

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a phase as the last child of a project or phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			parentID, err := resolvePhaseID(ctx, app, parent)
			if err != nil {
				return err
			}
			p, err := app.Phases.GetNode(ctx, parentID)
			if err != nil {
				return err
			}

			created, err := app.Phases.CreateNode(ctx, &parentID, title, startV.orDefault(p.Start))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added phase %s [%s] under %s at position %d\n",
				created.Title, formatter.ShortID(created.ID), p.Title, created.Position)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent project or phase ID")
	cmd.Flags().StringVar(&title, "title", "", "Phase title")
	startV = dateFlag(cmd.Flags(), "start", "Start date, defaults to the parent's")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newPhaseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show phase details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolvePhaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Phases.GetNode(ctx, id)
			if err != nil {
				return err
			}
			children, err := app.Phases.ListChildren(ctx, &id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPhase(p, children))
			return nil
		},
	}
}

func newPhaseEditCmd(app *App) *cobra.Command {
	var title, parent string
	var root bool
	var startV *dateValue

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change title, start date or parent",
		Long: "Change title, start date or parent. A new parent appends the phase to the\n" +
			"end of its children; --root turns the phase into a project.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolvePhaseID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var upd service.PhaseUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("start") {
				start := startV.orDefault(app.now())
				upd.Start = &start
			}
			switch {
			case root && cmd.Flags().Changed("parent"):
				return fmt.Errorf("--parent and --root are mutually exclusive")
			case root:
				upd.Parent = &service.ParentChange{}
			case cmd.Flags().Changed("parent"):
				parentID, err := resolvePhaseID(ctx, app, parent)
				if err != nil {
					return err
				}
				upd.Parent = &service.ParentChange{ParentID: &parentID}
			}
			if upd.Title == nil && upd.Start == nil && upd.Parent == nil {
				return fmt.Errorf("nothing to change: pass --title, --start, --parent or --root")
			}

			p, err := app.Phases.UpdateNode(ctx, id, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s [%s] position %d\n", p.Title, formatter.ShortID(p.ID), p.Position)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	startV = dateFlag(cmd.Flags(), "start", "New start date")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent ID")
	cmd.Flags().BoolVar(&root, "root", false, "Detach from the parent and make a project")

	return cmd
}

func newPhaseMoveCmd(app *App, use, short string, move func(service.PhaseService, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolvePhaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := move(app.Phases, ctx, id); err != nil {
				return err
			}
			p, err := app.Phases.GetNode(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now at position %d\n", p.Title, p.Position)
			return nil
		},
	}
}

func newPhaseRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a phase and everything under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolvePhaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			tree, err := app.Phases.ListDescendants(ctx, id, true)
			if err != nil {
				return err
			}
			if err := app.Phases.DeleteNode(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and %d descendant(s)\n", tree[0].Title, len(tree)-1)
			return nil
		},
	}
}
