// Package contrib holds the shapes shared by every contribution source.
//
// This package enables contribmix to:
// - Describe one day of activity independently of the upstream API
// - Describe a single pushed commit for the recent-commit list
// - Express the outcome of querying one source
// - Classify upstream failures so callers can map them to responses
package contrib

import "time"

// DateLayout is the ISO calendar-date layout used for every Day.
const DateLayout = "2006-01-02"

// Day is the activity count of one calendar day.
type Day struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Commit is a single commit from a recent push, newest first in lists.
type Commit struct {
	Message string    `json:"message"`
	Repo    string    `json:"repo"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

// Result is the outcome of one source call. Exactly one of Days and Err is
// meaningful: a failed source carries no days.
type Result struct {
	Source string
	Days   []Day
	Err    error
}

// OK reports whether the source call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// FormatDate truncates t to its UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
