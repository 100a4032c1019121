package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
)

// Validate checks the document before import and returns every problem
// found.
func Validate(doc *Document) []error {
	var errs []error
	if doc.Version != 0 && doc.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("version: unsupported value %d", doc.Version))
	}

	type item struct {
		path string
		node Node
	}
	stack := []item{{path: "project", node: doc.Project}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if strings.TrimSpace(cur.node.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", cur.path))
		}
		if cur.node.Start == "" {
			errs = append(errs, fmt.Errorf("%s.start is required", cur.path))
		} else if _, err := time.Parse(domain.DateLayout, cur.node.Start); err != nil {
			errs = append(errs, fmt.Errorf("%s.start: invalid date format %q (expected YYYY-MM-DD)", cur.path, cur.node.Start))
		}
		for i := len(cur.node.Phases) - 1; i >= 0; i-- {
			stack = append(stack, item{
				path: fmt.Sprintf("%s.phases[%d]", cur.path, i),
				node: cur.node.Phases[i],
			})
		}
	}
	return errs
}
