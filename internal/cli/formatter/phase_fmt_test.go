package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phase(id, title string, parent string, pos int) *domain.Phase {
	p := &domain.Phase{
		ID:       id,
		Title:    title,
		Start:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Position: pos,
	}
	if parent != "" {
		p.ParentID = &parent
	}
	return p
}

func TestFormatProjectList(t *testing.T) {
	out := FormatProjectList([]*domain.Phase{
		phase("abcdef12-3456", "Villa Rossi", "", 0),
		phase("99999999-0000", "Bridge", "", 1),
	})

	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "abcdef12")
	assert.NotContains(t, out, "abcdef12-3456")
	assert.Contains(t, out, "2024-03-04")
	assert.Less(t, strings.Index(out, "Villa Rossi"), strings.Index(out, "Bridge"))
}

func TestFormatPhaseTree_Connectors(t *testing.T) {
	out := FormatPhaseTree([]*domain.Phase{
		phase("p", "Project", "", 0),
		phase("a", "Design", "p", 0),
		phase("a1", "Sketch", "a", 0),
		phase("b", "Build", "p", 1),
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Project")
	assert.Contains(t, lines[1], "├─ Design")
	assert.Contains(t, lines[2], "│  └─ Sketch")
	assert.Contains(t, lines[3], "└─ Build")
}

func TestFormatPhaseTree_Empty(t *testing.T) {
	assert.Empty(t, FormatPhaseTree(nil))
}

func TestFormatPhase(t *testing.T) {
	out := FormatPhase(phase("a", "Design", "parent-id-123", 2), nil)
	assert.Contains(t, out, "DESIGN")
	assert.Contains(t, out, "parent-i")
	assert.Contains(t, out, "2024-03-04")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"long value", "x"}, {"s", "y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
	assert.Empty(t, RenderTable(nil, nil))
}
