package web

import (
	"strings"
	"time"

	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/service"
)

type phaseView struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Start     string  `json:"start"`
	ParentID  *string `json:"parent_id"`
	Position  int     `json:"position"`
	IsProject bool    `json:"is_project"`
}

func newPhaseView(p *domain.Phase) phaseView {
	return phaseView{
		ID:        p.ID,
		Title:     p.Title,
		Start:     p.Start.Format(domain.DateLayout),
		ParentID:  p.ParentID,
		Position:  p.Position,
		IsProject: p.IsProject(),
	}
}

func newPhaseViews(ps []*domain.Phase) []phaseView {
	out := make([]phaseView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPhaseView(p))
	}
	return out
}

type dayView struct {
	Number  int    `json:"number"`
	Label   string `json:"label"`
	Weekend bool   `json:"weekend"`
}

type monthView struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	DayCount    int       `json:"day_count"`
	FirstOffset int       `json:"first_offset"`
	Days        []dayView `json:"days"`
	Prev        [2]int    `json:"prev"`
	Next        [2]int    `json:"next"`
}

func newMonthView(g calendar.MonthGrid) monthView {
	v := monthView{
		Year:        g.Year,
		Month:       int(g.Month),
		DayCount:    g.DayCount,
		FirstOffset: g.FirstOffset,
		Days:        make([]dayView, 0, len(g.Days)),
	}
	for _, d := range g.Days {
		v.Days = append(v.Days, dayView{
			Number:  d.Number,
			Label:   d.Label,
			Weekend: d.Weekday == time.Saturday || d.Weekday == time.Sunday,
		})
	}
	prev, next := g.Prev(), g.Next()
	v.Prev = [2]int{prev.Year, int(prev.Month)}
	v.Next = [2]int{next.Year, int(next.Month)}
	return v
}

type rowView struct {
	Phase   phaseView `json:"phase"`
	Depth   int       `json:"depth"`
	End     string    `json:"end"`
	Visible bool      `json:"visible"`
	Offset  int       `json:"offset"`
	Length  int       `json:"length"`
	Bar     string    `json:"bar"`
}

type chartView struct {
	Month monthView `json:"month"`
	Rows  []rowView `json:"rows"`
}

func newChartView(chart *service.Chart, maxDepth int) chartView {
	v := chartView{Month: newMonthView(chart.Grid), Rows: []rowView{}}
	for _, r := range chart.Rows {
		if maxDepth >= 0 && r.Depth > maxDepth {
			continue
		}
		v.Rows = append(v.Rows, rowView{
			Phase:   newPhaseView(r.Phase),
			Depth:   r.Depth,
			End:     r.Span.End.Format(domain.DateLayout),
			Visible: r.Bar.Visible,
			Offset:  r.Bar.Offset,
			Length:  r.Bar.Length,
			Bar:     barString(r.Bar),
		})
	}
	return v
}

// barString draws one character per day: '#' covered, '.' free.
func barString(b calendar.Bar) string {
	var sb strings.Builder
	sb.Grow(len(b.Cells))
	for _, on := range b.Cells {
		if on {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
