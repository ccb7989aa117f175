// README: Surcharge rules; each rule variant carries only the fields its trigger needs.
package surcharge

import (
	"errors"
	"fmt"
	"math"
	"time"

	"transferquote/internal/types"
)

var (
	ErrInvalidRequest = errors.New("invalid surcharge request")
	ErrInvalid        = errors.New("invalid surcharge")
)

type Type string

const (
	TypeCutoffTime Type = "cutoff_time"
	TypeTimeLeft   Type = "time_left"
	TypeDatetime   Type = "datetime"
)

type Application string

const (
	ApplicationPercentage  Application = "percentage"
	ApplicationFixedAmount Application = "fixed_amount"
)

type Surcharge struct {
	ID          types.ID
	RegionID    types.ID
	Name        string
	Rule        Rule
	Application Application
	Value       float64
	Currency    string
	Priority    int
	Active      bool
	Description string
}

// Rule is implemented by CutoffTime, TimeLeft, RecurringWindow and AbsoluteWindow.
type Rule interface {
	Type() Type
	match(c matchContext) (bool, string)
	validate() error
}

type matchContext struct {
	at                 time.Time
	local              time.Time
	minutesUntilPickup float64
}

// CutoffTime fires when the booking is made within CutoffMinutes of pickup.
type CutoffTime struct {
	CutoffMinutes int
}

// TimeLeft fires when pickup is within TimeLeftMinutes of now.
type TimeLeft struct {
	TimeLeftMinutes int
}

// RecurringWindow is a daily local time-of-day window restricted to some weekdays.
// Start > End wraps past midnight.
type RecurringWindow struct {
	Start ClockTime
	End   ClockTime
	Days  DayMask
}

// AbsoluteWindow matches instants in [Start, End], both ends inclusive.
type AbsoluteWindow struct {
	Start time.Time
	End   time.Time
}

func (CutoffTime) Type() Type      { return TypeCutoffTime }
func (TimeLeft) Type() Type        { return TypeTimeLeft }
func (RecurringWindow) Type() Type { return TypeDatetime }
func (AbsoluteWindow) Type() Type  { return TypeDatetime }

func (s Surcharge) Validate() error {
	if s.Rule == nil {
		return fmt.Errorf("%w %s: missing rule", ErrInvalid, s.ID)
	}
	if err := s.Rule.validate(); err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalid, s.ID, err)
	}
	if s.Value < 0 || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return fmt.Errorf("%w %s: value must be a non-negative number", ErrInvalid, s.ID)
	}
	switch s.Application {
	case ApplicationPercentage:
	case ApplicationFixedAmount:
		if len(s.Currency) != 3 {
			return fmt.Errorf("%w %s: fixed_amount requires a currency", ErrInvalid, s.ID)
		}
	default:
		return fmt.Errorf("%w %s: unknown application %q", ErrInvalid, s.ID, s.Application)
	}
	return nil
}

// Applied is one surcharge that fired, with its computed amount.
type Applied struct {
	ID          types.ID    `json:"id"`
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Application Application `json:"application"`
	Value       float64     `json:"value"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Reason      string      `json:"reason"`
	Priority    int         `json:"priority"`
}

// Skipped is a matching surcharge that could not be applied to this quote.
type Skipped struct {
	ID     types.ID
	Name   string
	Reason string
}

type Input struct {
	RegionID           types.ID
	BookingTime        time.Time
	MinutesUntilPickup float64
	Subtotal           float64
	Currency           string
}

type Result struct {
	Applied []Applied
	Skipped []Skipped
	Total   float64
}
