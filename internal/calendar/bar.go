package calendar

import (
	"sort"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
)

// Span is an inclusive range of days.
type Span struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the day of t lies within the span.
func (s Span) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(s.Start)) && !d.After(dateOnly(s.End))
}

// Days returns the span length in days, counting both ends.
func (s Span) Days() int {
	return daysBetween(s.Start, s.End) + 1
}

// Bar is a span clipped to one month grid.
type Bar struct {
	Visible         bool
	Offset          int // zero-based column of the first covered day
	Length          int
	Cells           []bool
	ContinuesBefore bool
	ContinuesAfter  bool
}

// Bar clips the span to the grid's month.
func (g MonthGrid) Bar(s Span) Bar {
	first, last := g.First(), g.Last()
	start, end := dateOnly(s.Start), dateOnly(s.End)
	b := Bar{
		Cells:           make([]bool, g.DayCount),
		ContinuesBefore: start.Before(first),
		ContinuesAfter:  end.After(last),
	}
	if start.Before(first) {
		start = first
	}
	if end.After(last) {
		end = last
	}
	if end.Before(start) {
		return b
	}
	b.Visible = true
	b.Offset = start.Day() - 1
	b.Length = daysBetween(start, end) + 1
	for i := b.Offset; i < b.Offset+b.Length; i++ {
		b.Cells[i] = true
	}
	return b
}

// Spans derives the date span of every phase in the set from the tree
// shape. A phase runs from its start to the day before its next sibling
// starts; the last sibling runs to its parent's end; a phase whose parent is
// not in the set ends at the latest start within its subtree. A phase never
// ends before its own start or before the latest start below it.
func Spans(phases []*domain.Phase) map[string]Span {
	byID := make(map[string]*domain.Phase, len(phases))
	for _, p := range phases {
		byID[p.ID] = p
	}
	children := make(map[string][]*domain.Phase)
	var roots []*domain.Phase
	for _, p := range phases {
		if p.ParentID != nil && byID[*p.ParentID] != nil {
			children[*p.ParentID] = append(children[*p.ParentID], p)
			continue
		}
		roots = append(roots, p)
	}
	for id := range children {
		sortSiblings(children[id])
	}
	sortSiblings(roots)

	// Pre-order walk; reversing it visits children before parents.
	var order []*domain.Phase
	stack := append([]*domain.Phase(nil), roots...)
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	visited := make(map[string]bool, len(phases))
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p.ID] {
			continue
		}
		visited[p.ID] = true
		order = append(order, p)
		kids := children[p.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	latest := make(map[string]time.Time, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		l := dateOnly(p.Start)
		for _, c := range children[p.ID] {
			if latest[c.ID].After(l) {
				l = latest[c.ID]
			}
		}
		latest[p.ID] = l
	}

	spans := make(map[string]Span, len(order))
	for _, r := range roots {
		if visited[r.ID] {
			spans[r.ID] = Span{Start: dateOnly(r.Start), End: latest[r.ID]}
		}
	}
	for _, p := range order {
		kids := children[p.ID]
		parentEnd := spans[p.ID].End
		for i, c := range kids {
			start := dateOnly(c.Start)
			end := parentEnd
			if i+1 < len(kids) {
				if next := dateOnly(kids[i+1].Start); next.After(start) {
					end = next.AddDate(0, 0, -1)
				}
			}
			if latest[c.ID].After(end) {
				end = latest[c.ID]
			}
			if end.Before(start) {
				end = start
			}
			spans[c.ID] = Span{Start: start, End: end}
		}
	}
	return spans
}

func sortSiblings(ps []*domain.Phase) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Position < ps[j].Position
	})
}
