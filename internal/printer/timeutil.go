package printer

import (
	"fmt"
	"time"

	"github.com/slok/herdops/internal/model"
)

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	now := time.Now().UTC()
	t = t.UTC()

	diff := now.Sub(t)

	// Handle future times
	if diff < 0 {
		return "in the future (UTC)"
	}

	if diff < time.Minute {
		return plural(int(diff.Seconds()), "second") + " ago (UTC)"
	}

	if diff < time.Hour {
		return plural(int(diff.Minutes()), "minute") + " ago (UTC)"
	}

	if diff < 24*time.Hour {
		return plural(int(diff.Hours()), "hour") + " ago (UTC)"
	}

	return plural(int(diff.Hours()/24), "day") + " ago (UTC)"
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// DueIn returns how far a scheduled date is from today.
// Examples: "today", "in 3 days", "2 days overdue".
func DueIn(date, today model.Date) string {
	days := int(date.Time().Sub(today.Time()).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days > 0:
		return "in " + plural(days, "day")
	default:
		return plural(-days, "day") + " overdue"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
