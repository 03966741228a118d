package timetable

import (
	"regexp"
	"time"
)

// ymPattern matches the year-month query token in the endpoint URL,
// e.g. "ym=2025-09".
var ymPattern = regexp.MustCompile(`(ym=)\d{4}-\d{2}`)

// MonthURLs derives one request URL per month in the window
// [-before, +after] around the month containing base, by rewriting the
// ym=YYYY-MM token in template. Month arithmetic is done on the first
// of the month, so year rollover is handled by time.AddDate.
//
// If template carries no ym token, a single unmodified URL is returned
// regardless of the window. Duplicate URLs are dropped while keeping
// window order.
func MonthURLs(template string, base time.Time, before, after int) []string {
	if !ymPattern.MatchString(template) {
		return []string{template}
	}

	first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location())

	seen := make(map[string]bool)
	urls := make([]string, 0, before+after+1)

	for off := -before; off <= after; off++ {
		ym := first.AddDate(0, off, 0).Format("2006-01")
		u := ymPattern.ReplaceAllString(template, "${1}"+ym)
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}
