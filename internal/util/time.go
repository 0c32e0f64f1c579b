package util

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DateFormat is the date format shown to operators (dd/mm/yyyy).
	DateFormat = "02/01/2006"

	// DateTimeFormat is the date-time format shown to operators.
	DateTimeFormat = "02/01/2006 15:04"

	// FileDateFormat is used in exported file names.
	FileDateFormat = "2006-01-02"

	// ISO8601Format is the RFC3339 format used for storage.
	ISO8601Format = time.RFC3339Nano
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a manually driven clock for tests and seeding.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the current fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// FormatDate formats a time as dd/mm/yyyy. The zero time renders as "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateFormat)
}

// FormatDateTime formats a time as dd/mm/yyyy hh:mm.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateTimeFormat)
}

// FormatISO8601 formats a time for storage.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(ISO8601Format)
}

// ParseDate parses a dd/mm/yyyy date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}

// ParseISO8601 parses a stored timestamp.
func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Format, s)
}

var monthAbbrev = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// BillingPeriod renders the invoice period label, e.g. "Nov/2024".
func BillingPeriod(t time.Time) string {
	return fmt.Sprintf("%s/%d", monthAbbrev[t.Month()-1], t.Year())
}

// StartOfDay returns midnight of the given day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysSince calculates the number of calendar days between two dates.
func DaysSince(from, to time.Time) int {
	from = StartOfDay(from)
	to = StartOfDay(to)
	return int(to.Sub(from).Hours() / 24)
}

// NextMeasurementDate returns the next occurrence of the monthly measurement
// day on or after now.
func NextMeasurementDate(now time.Time, day int) time.Time {
	next := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	if next.Before(StartOfDay(now)) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// RelativeTimeString returns a short Portuguese relative time string.
func RelativeTimeString(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < time.Minute:
		return "agora"
	case diff < time.Hour:
		return fmt.Sprintf("há %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("há %d h", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "ontem"
	default:
		return fmt.Sprintf("há %d dias", int(diff.Hours()/24))
	}
}
