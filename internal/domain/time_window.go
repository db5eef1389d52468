package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the date-only layout used for schedule dates.
	DateLayout = "2006-01-02"

	// ClockLayout is the 24-hour wall clock layout used for window bounds.
	ClockLayout = "15:04"
)

var (
	ErrInvalidClock   = errors.New("time must be HH:MM (24-hour)")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrEmptyWindow    = errors.New("start time and end time must differ")
	ErrInvertedWindow = errors.New("end time must be after start time")
)

// TimeWindow is a half-open same-day interval [Start, End) in minutes after midnight.
type TimeWindow struct {
	Start int
	End   int
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindow builds a window from two "HH:MM" bounds.
func ParseWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	w := TimeWindow{Start: s, End: e}
	return w, w.Validate()
}

// Validate checks the window is non-empty and ordered.
func (w TimeWindow) Validate() error {
	if w.Start == w.End {
		return ErrEmptyWindow
	}
	if w.End < w.Start {
		return ErrInvertedWindow
	}
	return nil
}

// Overlaps reports whether two half-open windows intersect; touching windows do not.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// StartClock returns the start bound as "HH:MM".
func (w TimeWindow) StartClock() string { return FormatClock(w.Start) }

// EndClock returns the end bound as "HH:MM".
func (w TimeWindow) EndClock() string { return FormatClock(w.End) }

func (w TimeWindow) String() string {
	return w.StartClock() + "-" + w.EndClock()
}

// ParseDate validates a date-only string.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}
