package cli

import (
	"fmt"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
	"github.com/spf13/pflag"
)

// dateValue is a pflag.Value holding a YYYY-MM-DD date.
type dateValue struct {
	t   *time.Time
	set bool
}

var _ pflag.Value = (*dateValue)(nil)

func newDateValue(p *time.Time) *dateValue {
	return &dateValue{t: p}
}

func (d *dateValue) Set(s string) error {
	t, err := domain.ParseDate(s)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	*d.t = t
	d.set = true
	return nil
}

func (d *dateValue) String() string {
	if d.t == nil || d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateValue) Type() string { return "date" }

// dateFlag registers a date flag on fs and returns its value.
func dateFlag(fs *pflag.FlagSet, name, usage string) *dateValue {
	var t time.Time
	v := newDateValue(&t)
	fs.Var(v, name, usage+" (YYYY-MM-DD)")
	return v
}

// orDefault returns the flag's date, or def when the flag was not given.
func (d *dateValue) orDefault(def time.Time) time.Time {
	if d.set {
		return *d.t
	}
	return def
}
