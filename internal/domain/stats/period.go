package stats

import (
	"math"
	"strings"
	"time"
)

// Clock supplies the current instant. Injecting it keeps period
// resolution deterministic in tests.
type Clock func() time.Time

// Period names a relative reporting window
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// IsValid checks if the period is a recognized token
func (p Period) IsValid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// String returns the string representation of Period
func (p Period) String() string {
	return string(p)
}

// ParsePeriod parses a period token, falling back to the given default
// for unrecognized input. An unknown token is not an error: a reporting
// filter should never hard-fail the page.
func ParsePeriod(token string, fallback Period) Period {
	p := Period(strings.ToLower(strings.TrimSpace(token)))
	if !p.IsValid() {
		return fallback
	}
	return p
}

// DateRange is an ordered pair of inclusive timestamps
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsValid reports whether Start <= End
func (r DateRange) IsValid() bool {
	return !r.Start.After(r.End)
}

// Days returns the inclusive number of calendar days covered by the range
func (r DateRange) Days() int {
	start := startOfDay(r.Start)
	end := startOfDay(r.End)
	return daysBetween(start, end) + 1
}

// PeriodComparison pairs a current range with the equal-length range
// that immediately precedes it
type PeriodComparison struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
}

// PeriodResolver maps period tokens to concrete date ranges
type PeriodResolver struct {
	clock         Clock
	location      *time.Location
	weekStart     time.Weekday
	defaultPeriod Period
}

// NewPeriodResolver creates a resolver. A nil clock uses the wall clock,
// a nil location uses the process-local time zone.
func NewPeriodResolver(clock Clock, location *time.Location, weekStart time.Weekday, defaultPeriod Period) *PeriodResolver {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.Local
	}
	if !defaultPeriod.IsValid() {
		defaultPeriod = PeriodMonth
	}
	return &PeriodResolver{
		clock:         clock,
		location:      location,
		weekStart:     weekStart,
		defaultPeriod: defaultPeriod,
	}
}

// Resolve maps a period token to a concrete start/end pair, inclusive of
// both endpoints. Unrecognized tokens resolve as the default period.
func (r *PeriodResolver) Resolve(token string) DateRange {
	now := r.clock().In(r.location)
	today := startOfDay(now)

	switch ParsePeriod(token, r.defaultPeriod) {
	case PeriodToday:
		return DateRange{Start: today, End: endOfDay(today)}
	case PeriodWeek:
		offset := (int(now.Weekday()) - int(r.weekStart) + 7) % 7
		start := today.AddDate(0, 0, -offset)
		return DateRange{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case PeriodYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, r.location)
		return DateRange{Start: start, End: endOfDay(start.AddDate(1, 0, -1))}
	default: // month
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.location)
		return DateRange{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
	}
}

// PreviousRange derives the equal-duration range immediately preceding
// current, at day granularity: the previous range ends the day before
// current starts and spans the same inclusive day count, so the two
// never overlap.
func (r *PeriodResolver) PreviousRange(current DateRange) DateRange {
	curStart := startOfDay(current.Start)
	curEnd := startOfDay(current.End)
	duration := daysBetween(curStart, curEnd)

	prevEnd := curStart.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -duration)

	return DateRange{Start: prevStart, End: endOfDay(prevEnd)}
}

// Comparison resolves a token into a current/previous range pair
func (r *PeriodResolver) Comparison(token string) PeriodComparison {
	current := r.Resolve(token)
	return PeriodComparison{
		Current:  current,
		Previous: r.PreviousRange(current),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// daysBetween counts whole calendar days from a to b, DST-safe
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
