package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/phaseboard/timeline/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newMonthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YEAR MONTH]",
		Short: "Print a calendar page",
		Long: "Print a calendar page. Months outside 1-12 roll over into the\n" +
			"neighbouring year, so `month 2024 13` shows January 2025.",
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("pass both YEAR and MONTH, or neither")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := yearMonthArgs(app, args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMonthGrid(app.Phases.MonthGrid(year, month)))
			return nil
		},
	}
}

func yearMonthArgs(app *App, args []string) (int, int, error) {
	now := app.now()
	if len(args) == 0 {
		return now.Year(), int(now.Month()), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q", args[1])
	}
	return year, month, nil
}

func newChartCmd(app *App) *cobra.Command {
	var year, month int
	var all bool

	cmd := &cobra.Command{
		Use:   "chart [PROJECT]",
		Short: "Draw phases as bars across a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := app.now()
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}

			var rootID *string
			if len(args) == 1 {
				id, err := resolveProjectID(ctx, app, args[0])
				if err != nil {
					return err
				}
				rootID = &id
			}

			chart, err := app.Phases.Chart(ctx, rootID, year, month)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChart(chart, formatter.ChartOptions{
				Cursor:        -1,
				HideInvisible: !all,
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year, defaults to the current one")
	cmd.Flags().IntVar(&month, "month", 0, "Month number, out-of-range values roll over")
	cmd.Flags().BoolVar(&all, "all", false, "Include phases outside the month")

	return cmd
}
