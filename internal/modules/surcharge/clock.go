// README: Clock time and weekday mask value types used by recurring windows.
package surcharge

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is minutes after local midnight; 1440 ("24:00") is accepted as an end bound.
type ClockTime int

const endOfDay ClockTime = 24 * 60

func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	if h == 24 && m == 0 {
		return endOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// DayMask has bit d set for weekday d (0 = Sunday).
type DayMask uint8

const AllDays DayMask = 1<<7 - 1

func MaskOf(days ...time.Weekday) DayMask {
	var m DayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

func (m DayMask) Has(d time.Weekday) bool {
	return m&(1<<uint(d)) != 0
}
