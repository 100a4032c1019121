package service

import (
	"context"

	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/domain"
)

// Chart is one month of a phase tree laid out as calendar bars.
type Chart struct {
	Grid calendar.MonthGrid
	Rows []ChartRow
}

// ChartRow is a phase in pre-order with its depth below the chart root.
type ChartRow struct {
	Phase *domain.Phase
	Depth int
	Span  calendar.Span
	Bar   calendar.Bar
}

// Visible returns the rows with at least one day inside the month.
func (c *Chart) Visible() []ChartRow {
	var out []ChartRow
	for _, r := range c.Rows {
		if r.Bar.Visible {
			out = append(out, r)
		}
	}
	return out
}

// Chart renders the subtree under rootID, or every project when rootID is
// nil, onto the grid of year/month.
func (s *phaseService) Chart(ctx context.Context, rootID *string, year, month int) (chart *Chart, err error) {
	fields := map[string]any{"root": domain.GroupKey(rootID), "year": year, "month": month}
	defer track(ctx, s.observer, "chart", fields)(&err)

	var phases []*domain.Phase
	if rootID != nil {
		phases, err = s.phases.ListDescendants(ctx, *rootID, true)
		if err != nil {
			return nil, err
		}
	} else {
		projects, err := s.phases.ListChildren(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			tree, err := s.phases.ListDescendants(ctx, p.ID, true)
			if err != nil {
				return nil, err
			}
			phases = append(phases, tree...)
		}
	}

	grid := calendar.NewMonthGrid(year, month)
	spans := calendar.Spans(phases)
	depth := make(map[string]int, len(phases))
	chart = &Chart{Grid: grid, Rows: make([]ChartRow, 0, len(phases))}
	for _, p := range phases {
		d := 0
		if p.ParentID != nil {
			if pd, ok := depth[*p.ParentID]; ok {
				d = pd + 1
			}
		}
		depth[p.ID] = d
		span := spans[p.ID]
		chart.Rows = append(chart.Rows, ChartRow{
			Phase: p,
			Depth: d,
			Span:  span,
			Bar:   grid.Bar(span),
		})
	}
	fields["rows"] = len(chart.Rows)
	return chart, nil
}
