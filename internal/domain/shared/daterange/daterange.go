package daterange

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRange  = errors.New("daterange: checkout must not be before checkin")
	ErrMissingDate   = errors.New("daterange: date is required")
	ErrInvalidFormat = errors.New("daterange: date must be formatted as YYYY-MM-DD")
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrMissingDate
	}
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	return t.UTC(), nil
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(DayLayout)
}

// DateRange represents a half-open interval of calendar days [checkIn, checkOut).
// The checkout day is not charged.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a range of at least one night.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	if dr.Empty() {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

// NewStay builds a range that may be empty (checkIn == checkOut) but never inverted.
func NewStay(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrMissingDate
	}
	if dr.CheckOut.Before(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Empty reports a zero-night range.
func (dr DateRange) Empty() bool {
	return !dr.CheckOut.After(dr.CheckIn)
}

func (dr DateRange) Nights() int {
	if dr.Empty() {
		return 0
	}
	return int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)).Hours() / 24)
}

// Days lists every charged night, checkIn first.
func (dr DateRange) Days() []time.Time {
	n := dr.Nights()
	days := make([]time.Time, 0, n)
	start := Day(dr.CheckIn)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !other.CheckIn.Before(dr.CheckIn) && !other.CheckOut.After(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// Period is an inclusive span of calendar days [Start, End].
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod validates that End is not before Start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if p.Start.IsZero() || p.End.IsZero() {
		return Period{}, ErrMissingDate
	}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidRange
	}
	return p, nil
}

// ContainsDay reports whether the calendar day of t falls inside the period.
func (p Period) ContainsDay(t time.Time) bool {
	d := Day(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports whether the period shares at least one night with the stay.
func (p Period) Overlaps(dr DateRange) bool {
	if dr.Empty() {
		return false
	}
	lastNight := Day(dr.CheckOut).AddDate(0, 0, -1)
	return !p.Start.After(lastNight) && !p.End.Before(Day(dr.CheckIn))
}

// Length is the number of days in the period, both ends included.
func (p Period) Length() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
