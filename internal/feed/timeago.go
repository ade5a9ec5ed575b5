package feed

import (
	"fmt"
	"time"
)

// TimeAgo renders a compact relative label for a notification timestamp.
// The largest non-zero unit wins: years, months, days, hours, minutes, then
// "now". Future timestamps (clock skew) also render as "now".
func TimeAgo(createdAt, now time.Time) string {
	elapsed := now.Sub(createdAt)
	if elapsed < time.Minute {
		return "now"
	}

	days := int(elapsed.Hours()) / 24
	switch {
	case days >= 365:
		return fmt.Sprintf("%dy", days/365)
	case days >= 30:
		return fmt.Sprintf("%dmo", days/30)
	case days >= 1:
		return fmt.Sprintf("%dd", days)
	case elapsed >= time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dm", int(elapsed.Minutes()))
	}
}
