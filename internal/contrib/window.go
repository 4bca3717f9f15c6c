package contrib

import (
	"fmt"
	"time"
)

// DefaultSpanDays is the length of the default trailing window, inclusive.
const DefaultSpanDays = 365

// maxSpan is the widest From..To distance. The upstream query runs to the
// end of the To day, so the distance must stay under a full year.
const maxSpan = (DefaultSpanDays - 1) * 24 * time.Hour

// Window is an inclusive range of UTC calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// DefaultWindow returns the trailing 365 days ending on now's UTC date.
func DefaultWindow(now time.Time) Window {
	to := truncateDay(now)
	return Window{From: to.AddDate(0, 0, -(DefaultSpanDays - 1)), To: to}
}

// ParseWindow builds a Window from optional client-supplied bounds.
// Bounds accept either YYYY-MM-DD or RFC 3339. A missing "to" means today,
// a missing "from" means the default span before "to".
func ParseWindow(from, to string, now time.Time) (Window, error) {
	w := DefaultWindow(now)

	if to != "" {
		t, err := parseDay(to)
		if err != nil {
			return Window{}, fmt.Errorf("%w: invalid to date %q", ErrValidation, to)
		}
		w.To = t
		w.From = t.AddDate(0, 0, -(DefaultSpanDays - 1))
	}
	if from != "" {
		f, err := parseDay(from)
		if err != nil {
			return Window{}, fmt.Errorf("%w: invalid from date %q", ErrValidation, from)
		}
		w.From = f
	}

	if w.From.After(w.To) {
		return Window{}, fmt.Errorf("%w: from %s is after to %s", ErrValidation, w.FromDate(), w.ToDate())
	}
	if w.To.Sub(w.From) > maxSpan {
		return Window{}, fmt.Errorf("%w: window %s..%s exceeds one year", ErrValidation, w.FromDate(), w.ToDate())
	}
	return w, nil
}

// FromDate is the first day of the window as YYYY-MM-DD.
func (w Window) FromDate() string { return w.From.Format(DateLayout) }

// ToDate is the last day of the window as YYYY-MM-DD.
func (w Window) ToDate() string { return w.To.Format(DateLayout) }

// End is the last instant of the window's final day.
func (w Window) End() time.Time {
	return w.To.Add(24*time.Hour - time.Second)
}

// Contains reports whether the YYYY-MM-DD date falls inside the window.
func (w Window) Contains(date string) bool {
	return date >= w.FromDate() && date <= w.ToDate()
}

// Filter keeps the days inside the window. The input is not modified.
func (w Window) Filter(days []Day) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if w.Contains(d.Date) {
			out = append(out, d)
		}
	}
	return out
}

// Covering returns the window from the first to the last of the sorted days,
// or fallback when there are none.
func Covering(days []Day, fallback Window) Window {
	if len(days) == 0 {
		return fallback
	}
	from, err := time.Parse(DateLayout, days[0].Date)
	if err != nil {
		return fallback
	}
	to, err := time.Parse(DateLayout, days[len(days)-1].Date)
	if err != nil {
		return fallback
	}
	return Window{From: from, To: to}
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
