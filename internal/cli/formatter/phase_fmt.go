package formatter

import (
	"fmt"
	"strconv"

	"github.com/phaseboard/timeline/internal/domain"
)

// FormatProjectList renders projects as a table in position order.
func FormatProjectList(projects []*domain.Phase) string {
	headers := []string{"#", "ID", "PROJECT", "START"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			StyleDim.Render(strconv.Itoa(p.Position)),
			TruncID(p.ID),
			Bold(p.Title),
			Date(p.Start),
		})
	}
	return RenderTable(headers, rows)
}

// FormatPhaseTree renders a subtree given in pre-order, as returned by
// ListDescendants with includeSelf.
func FormatPhaseTree(phases []*domain.Phase) string {
	if len(phases) == 0 {
		return ""
	}
	depth := map[string]int{phases[0].ID: 0}
	// last[parent] is the id of the final child listed under parent.
	last := make(map[string]string)
	for _, p := range phases[1:] {
		if p.ParentID != nil {
			last[*p.ParentID] = p.ID
		}
	}

	items := make([]TreeItem, 0, len(phases))
	for i, p := range phases {
		level := 0
		isLast := true
		if i > 0 && p.ParentID != nil {
			level = depth[*p.ParentID] + 1
			isLast = last[*p.ParentID] == p.ID
		}
		depth[p.ID] = level
		items = append(items, TreeItem{
			Title:  p.Title,
			Level:  level,
			IsLast: isLast,
			Detail: fmt.Sprintf("%s  %s", ShortID(p.ID), Date(p.Start)),
		})
	}
	return RenderTree(items)
}

// FormatPhase renders the detail block of a single phase.
func FormatPhase(p *domain.Phase, children []*domain.Phase) string {
	parent := "(project)"
	if p.ParentID != nil {
		parent = ShortID(*p.ParentID)
	}
	rows := [][]string{
		{Dim("id"), p.ID},
		{Dim("start"), Date(p.Start)},
		{Dim("parent"), parent},
		{Dim("position"), strconv.Itoa(p.Position)},
		{Dim("children"), strconv.Itoa(len(children))},
	}
	body := ""
	for _, r := range rows {
		body += fmt.Sprintf("%-10s %s\n", r[0], r[1])
	}
	return RenderBox(p.Title, body)
}
