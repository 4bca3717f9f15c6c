// Package display provides terminal output formatting for contribmix.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

const (
	separator = " • "
	barWidth  = 30
	messageW  = 72
)

// TerminalFormatter formats contribution data for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatSeries renders a daily series as a header, a total, and one bar per
// active day. Zero-count days are omitted.
func (f *TerminalFormatter) FormatSeries(title string, window contrib.Window, days []contrib.Day) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s to %s)\n", title, window.FromDate(), window.ToDate())

	total, active, peak := 0, 0, 0
	for _, d := range days {
		if d.Count <= 0 {
			continue
		}
		total += d.Count
		active++
		peak = max(peak, d.Count)
	}

	if active == 0 {
		b.WriteString("  No contributions in this window.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  total %d%sactive days %d\n\n", total, separator, active)
	for _, d := range days {
		if d.Count <= 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s  %s %d\n", d.Date, bar(d.Count, peak), d.Count)
	}
	return b.String()
}

// FormatCommit formats a single commit for display.
func (f *TerminalFormatter) FormatCommit(c contrib.Commit) string {
	lines := []string{
		fmt.Sprintf("[%s] %s", c.Repo, f.TruncateText(firstLine(c.Message), messageW)),
		"  " + f.FormatTimestamp(c.Date),
	}
	if c.URL != "" {
		lines = append(lines, "  "+c.URL)
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatCommits formats a commit list, newest first as given.
func (f *TerminalFormatter) FormatCommits(commits []contrib.Commit) string {
	if len(commits) == 0 {
		return "No recent commits.\n"
	}

	formatted := make([]string, 0, len(commits))
	for _, c := range commits {
		formatted = append(formatted, f.FormatCommit(c))
	}
	return strings.Join(formatted, "\n")
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

func bar(count, peak int) string {
	n := count * barWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
