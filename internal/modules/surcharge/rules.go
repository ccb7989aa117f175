// README: Trigger matching for each surcharge rule variant.
package surcharge

import (
	"errors"
	"fmt"
	"time"
)

func (r CutoffTime) match(c matchContext) (bool, string) {
	if c.minutesUntilPickup > float64(r.CutoffMinutes) {
		return false, ""
	}
	return true, fmt.Sprintf("booked %.0f min before pickup, inside the %d min cutoff", c.minutesUntilPickup, r.CutoffMinutes)
}

func (r CutoffTime) validate() error {
	if r.CutoffMinutes < 0 {
		return errors.New("cutoffMinutes must be non-negative")
	}
	return nil
}

func (r TimeLeft) match(c matchContext) (bool, string) {
	if c.minutesUntilPickup > float64(r.TimeLeftMinutes) {
		return false, ""
	}
	return true, fmt.Sprintf("pickup in %.0f min, within %d min of now", c.minutesUntilPickup, r.TimeLeftMinutes)
}

func (r TimeLeft) validate() error {
	if r.TimeLeftMinutes < 0 {
		return errors.New("timeLeftMinutes must be non-negative")
	}
	return nil
}

// contains reports whether a local clock time falls in the window. Equal bounds
// cover the whole day.
func (r RecurringWindow) contains(tod ClockTime) bool {
	switch {
	case r.Start == r.End:
		return true
	case r.Start < r.End:
		return tod >= r.Start && tod < r.End
	default:
		return tod >= r.Start || tod < r.End
	}
}

func (r RecurringWindow) match(c matchContext) (bool, string) {
	if !r.Days.Has(c.local.Weekday()) {
		return false, ""
	}
	tod := ClockOf(c.local)
	if !r.contains(tod) {
		return false, ""
	}
	return true, fmt.Sprintf("pickup %s %s local, within %s-%s", c.local.Weekday().String()[:3], tod, r.Start, r.End)
}

func (r RecurringWindow) validate() error {
	if r.Start < 0 || r.Start >= endOfDay || r.End < 0 || r.End > endOfDay {
		return errors.New("time range out of bounds")
	}
	if r.Days == 0 {
		return errors.New("daysOfWeek selects no day")
	}
	return nil
}

func (r AbsoluteWindow) match(c matchContext) (bool, string) {
	if c.at.Before(r.Start) || c.at.After(r.End) {
		return false, ""
	}
	return true, fmt.Sprintf("pickup between %s and %s",
		r.Start.In(c.local.Location()).Format(time.DateTime), r.End.In(c.local.Location()).Format(time.DateTime))
}

func (r AbsoluteWindow) validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("dateTimeRange needs start and end")
	}
	if r.End.Before(r.Start) {
		return errors.New("dateTimeRange ends before it starts")
	}
	return nil
}
