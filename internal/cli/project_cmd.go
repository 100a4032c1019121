package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/phaseboard/timeline/internal/cli/formatter"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/transfer"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectSuiteCmd(app),
		newProjectExportCmd(app),
		newProjectImportCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var title string
	var suite bool
	var startV *dateValue

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		Long:  "Create a new project. Without --title on a terminal, a form asks for the fields.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := startV.orDefault(domain.DateOf(app.now()))

			if title == "" {
				if !app.interactive() {
					return fmt.Errorf("--title is required")
				}
				in := projectInput{Start: start.Format("2006-01-02"), Suite: suite}
				if err := projectForm(&in).Run(); err != nil {
					return err
				}
				var err error
				if title, start, suite, err = in.parse(); err != nil {
					return err
				}
			}

			p, err := app.Phases.CreateProject(context.Background(), title, start, suite)
			if p == nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Title, formatter.ShortID(p.ID))
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	startV = dateFlag(cmd.Flags(), "start", "Start date, defaults to today")
	cmd.Flags().BoolVar(&suite, "suite", false, "Also create the configured suite of phases")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Phases.ListChildren(context.Background(), nil)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a project and all its phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			tree, err := app.Phases.ListDescendants(ctx, id, true)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPhaseTree(tree))
			return nil
		},
	}
}

func newProjectSuiteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "suite ID",
		Short: "Append the configured suite of phases to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			created, err := app.Phases.CreateSuite(ctx, id)
			if err != nil {
				return err
			}
			titles := make([]string, len(created))
			for i, p := range created {
				titles[i] = p.Title
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d phases: %s\n", len(created), strings.Join(titles, ", "))
			return nil
		},
	}
}

func newProjectExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a project tree as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			doc, err := app.Transfer.Export(ctx, id)
			if err != nil {
				return err
			}
			if out != "" {
				if err := transfer.Save(out, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d phases to %s\n", doc.Project.Count(), out)
				return nil
			}
			data, err := transfer.Encode(doc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project from a YAML export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := transfer.Load(args[0])
			if err != nil {
				return err
			}
			p, err := app.Transfer.Import(context.Background(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s [%s] with %d phases\n",
				p.Title, formatter.ShortID(p.ID), doc.Project.Count()-1)
			return nil
		},
	}
}
