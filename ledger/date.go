package ledger

import "time"

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with day granularity. The zero value represents
// "the beginning of time" and sorts before every real date.
//
// Dates are always normalized to midnight UTC, which makes them safe to
// compare with == and to use as map keys.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in ISO format (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Clock returns the current date. Injected wherever "today" affects engine
// output so tests can pin it.
type Clock func() Date

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return "-"
	}
	return d.t.Format("2006-01-02")
}

func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the number of days from `from` to `to`.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// DATE RANGE - Closed interval of dates
// =============================================================================

// DateRange is a closed interval [Start, End]. A range with End before Start
// is empty.
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

func (r DateRange) IsEmpty() bool {
	return r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start)
}

// Days returns the day count of the range, inclusive of both ends.
func (r DateRange) Days() int {
	if r.IsEmpty() {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) Contains(d Date) bool {
	return !r.IsEmpty() && d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Intersect returns the overlap of two ranges. The result is empty if they
// do not touch.
func (r DateRange) Intersect(other DateRange) DateRange {
	if r.IsEmpty() || other.IsEmpty() {
		return DateRange{}
	}
	start := MaxDate(r.Start, other.Start)
	end := MinDate(r.End, other.End)
	if end.Before(start) {
		return DateRange{}
	}
	return DateRange{Start: start, End: end}
}

// Future reports whether the whole range is strictly after `today`.
func (r DateRange) Future(today Date) bool {
	return !r.IsEmpty() && r.Start.After(today)
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
