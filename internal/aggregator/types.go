// Package aggregator combines daily contribution counts from multiple
// sources into a unified series.
//
// This package enables contribmix to:
// - Query every source concurrently with a per-source timeout
// - Tolerate individual source failures without failing the request
// - Merge the surviving series by calendar date
package aggregator

import (
	"sort"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

// Request pairs a source with the username to query on it.
type Request struct {
	Source   contrib.Source
	Username string
}

// Series maps a YYYY-MM-DD date to its accumulated count. A date no source
// reported is absent, never zero-valued.
type Series map[string]int

// Add accumulates days into the series. Negative counts are ignored.
func (s Series) Add(days []contrib.Day) {
	for _, d := range days {
		if d.Count < 0 {
			continue
		}
		s[d.Date] += d.Count
	}
}

// Days returns the series as a list sorted by ascending date.
func (s Series) Days() []contrib.Day {
	days := make([]contrib.Day, 0, len(s))
	for date, count := range s {
		days = append(days, contrib.Day{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// Merge sums the days of every successful result. Failed results are
// discarded: best-effort aggregation treats them as contributing nothing.
func Merge(results []contrib.Result) Series {
	series := make(Series)
	for _, r := range results {
		if !r.OK() {
			continue
		}
		series.Add(r.Days)
	}
	return series
}
