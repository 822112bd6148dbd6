package time

import (
	"fmt"
	"strings"
	"time"
)

// ShortDur shortens the string representation of a time.Duration from
// d.String(). Used when rendering per-step durations in run summaries.
func ShortDur(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// HumanDur rounds d to a readable precision: sub-second durations keep
// millisecond precision, anything longer is rounded to 100ms.
func HumanDur(d time.Duration) string {
	if d < time.Second {
		return ShortDur(d.Round(time.Millisecond))
	}
	return ShortDur(d.Round(100 * time.Millisecond))
}

// Stamp formats t for the run summary footer.
func Stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05 MST")
}

// Between returns the human-readable duration between start and end,
// guarding against a zero end time.
func Between(start, end time.Time) string {
	if end.IsZero() || start.IsZero() || end.Before(start) {
		return "n/a"
	}
	return HumanDur(end.Sub(start))
}

// Countdown renders the remaining budget of a deadline, e.g. "4.2s left".
func Countdown(deadline time.Time) string {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return "expired"
	}
	return fmt.Sprintf("%s left", HumanDur(remaining))
}
