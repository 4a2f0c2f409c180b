package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`(?i)^\s*(\d{1,3})\s*(day|days|d)\s*$`)

// parseDates accepts either an explicit range "2026-09-01..2026-09-05" or a
// flexible duration like "3 days". Both ends of a range are inclusive.
func parseDates(dates string) int {
	dates = strings.TrimSpace(dates)
	if dates == "" {
		return 0
	}

	if m := durationPattern.FindStringSubmatch(dates); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0
		}
		return n
	}

	parts := strings.SplitN(dates, "..", 2)
	if len(parts) != 2 {
		return 0
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days <= 0 {
		return 0
	}
	return days
}
