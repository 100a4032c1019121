package domain

import "time"

// DateLayout is the storage and CLI format for phase start dates.
const DateLayout = "2006-01-02"

// Phase is a node of the timeline tree. A phase without a parent is a project.
type Phase struct {
	ID        string
	Title     string
	Start     time.Time
	ParentID  *string
	Position  int // rank among siblings sharing ParentID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsProject reports whether the phase is a root of the tree.
func (p *Phase) IsProject() bool {
	return p.ParentID == nil
}

// SameParent reports whether parentID names the same sibling group as the
// phase's current parent. Nil means the root group.
func (p *Phase) SameParent(parentID *string) bool {
	return SameGroup(p.ParentID, parentID)
}

// SameGroup compares two optional parent references.
func SameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GroupKey renders a parent reference for logs and metrics labels.
func GroupKey(parentID *string) string {
	if parentID == nil {
		return "root"
	}
	return *parentID
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateOf returns the calendar date of t in t's own location, as midnight
// UTC. Converting with t.UTC() would move dates east of UTC back a day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultSuite is the bundle of phases added to a new project when no suite
// is configured.
var DefaultSuite = []string{
	"Survey",
	"Preliminary design",
	"Final design",
	"Permits",
	"Construction",
	"Handover",
}
