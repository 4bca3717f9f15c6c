// Package github provides a client for the GitHub GraphQL and REST APIs.
//
// This package enables contribmix to:
// - Fetch a user's contribution calendar over a given window
// - Flatten the calendar into daily contribution counts
// - List the commits of a user's most recent public pushes
package github

import "github.com/gauthierbraillon/contribmix/internal/contrib"

// ContributionDay is one cell of the GitHub contribution calendar.
type ContributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}

// Week groups the calendar cells of one week, as GitHub returns them.
type Week struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// Calendar is a user's contribution calendar.
type Calendar struct {
	TotalContributions int    `json:"totalContributions"`
	Weeks              []Week `json:"weeks"`
}

// Days flattens the week/day structure into a flat series.
func (c *Calendar) Days() []contrib.Day {
	days := make([]contrib.Day, 0, len(c.Weeks)*7)
	for _, w := range c.Weeks {
		for _, d := range w.ContributionDays {
			days = append(days, contrib.Day{Date: d.Date, Count: d.ContributionCount})
		}
	}
	return days
}
