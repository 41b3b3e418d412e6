// Package schedule parses the cron expressions that trigger background sweeps.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidExpression = errors.New("invalid cron expression")

// Schedule is a parsed standard five-field cron expression
type Schedule struct {
	expr string
	spec cron.Schedule
}

// Parse parses a standard cron expression ("0 */6 * * *", "@daily", ...)
func Parse(expr string) (*Schedule, error) {
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
	}
	return &Schedule{expr: expr, spec: spec}, nil
}

// MustParse is like Parse but panics on error
func MustParse(expr string) *Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schedule) String() string {
	return s.expr
}

// Next returns the first activation strictly after the given time,
// evaluated on the wall clock of loc
func (s *Schedule) Next(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return s.spec.Next(after.In(loc))
}
