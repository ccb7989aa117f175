// README: External record shape for surcharges, flattened with optional per-type fields.
package surcharge

import (
	"fmt"
	"time"

	"transferquote/internal/types"
)

type Record struct {
	ID              string         `json:"id" yaml:"id"`
	RegionID        string         `json:"regionId" yaml:"regionId"`
	Name            string         `json:"name" yaml:"name"`
	Type            string         `json:"type" yaml:"type"`
	Application     string         `json:"application" yaml:"application"`
	Value           float64        `json:"value" yaml:"value"`
	Currency        string         `json:"currency,omitempty" yaml:"currency,omitempty"`
	CutoffMinutes   *int           `json:"cutoffMinutes,omitempty" yaml:"cutoffMinutes,omitempty"`
	TimeLeftMinutes *int           `json:"timeLeftMinutes,omitempty" yaml:"timeLeftMinutes,omitempty"`
	TimeRange       *TimeRange     `json:"timeRange,omitempty" yaml:"timeRange,omitempty"`
	DateTimeRange   *DateTimeRange `json:"dateTimeRange,omitempty" yaml:"dateTimeRange,omitempty"`
	DaysOfWeek      []int          `json:"daysOfWeek,omitempty" yaml:"daysOfWeek,omitempty"`
	Priority        int            `json:"priority" yaml:"priority"`
	IsActive        bool           `json:"isActive" yaml:"isActive"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
}

type TimeRange struct {
	StartTime string `json:"startTime" yaml:"startTime"`
	EndTime   string `json:"endTime" yaml:"endTime"`
}

type DateTimeRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// ToSurcharge builds the rule variant named by Type; fields of other variants are ignored.
func (r Record) ToSurcharge() (Surcharge, error) {
	rule, err := r.rule()
	if err != nil {
		return Surcharge{}, fmt.Errorf("%w %s: %v", ErrInvalid, r.ID, err)
	}
	s := Surcharge{
		ID:          types.ID(r.ID),
		RegionID:    types.ID(r.RegionID),
		Name:        r.Name,
		Rule:        rule,
		Application: Application(r.Application),
		Value:       r.Value,
		Currency:    r.Currency,
		Priority:    r.Priority,
		Active:      r.IsActive,
		Description: r.Description,
	}
	return s, s.Validate()
}

func (r Record) rule() (Rule, error) {
	switch Type(r.Type) {
	case TypeCutoffTime:
		if r.CutoffMinutes == nil {
			return nil, fmt.Errorf("cutoff_time requires cutoffMinutes")
		}
		return CutoffTime{CutoffMinutes: *r.CutoffMinutes}, nil
	case TypeTimeLeft:
		if r.TimeLeftMinutes == nil {
			return nil, fmt.Errorf("time_left requires timeLeftMinutes")
		}
		return TimeLeft{TimeLeftMinutes: *r.TimeLeftMinutes}, nil
	case TypeDatetime:
		switch {
		case r.TimeRange != nil && r.DateTimeRange != nil:
			return nil, fmt.Errorf("datetime takes either timeRange or dateTimeRange, not both")
		case r.TimeRange != nil:
			start, err := ParseClock(r.TimeRange.StartTime)
			if err != nil {
				return nil, err
			}
			end, err := ParseClock(r.TimeRange.EndTime)
			if err != nil {
				return nil, err
			}
			days := AllDays
			if len(r.DaysOfWeek) > 0 {
				days = 0
				for _, d := range r.DaysOfWeek {
					if d < 0 || d > 6 {
						return nil, fmt.Errorf("daysOfWeek entry %d out of range 0-6", d)
					}
					days |= MaskOf(time.Weekday(d))
				}
			}
			return RecurringWindow{Start: start, End: end, Days: days}, nil
		case r.DateTimeRange != nil:
			return AbsoluteWindow{Start: r.DateTimeRange.Start, End: r.DateTimeRange.End}, nil
		default:
			return nil, fmt.Errorf("datetime requires timeRange or dateTimeRange")
		}
	default:
		return nil, fmt.Errorf("unknown type %q", r.Type)
	}
}
