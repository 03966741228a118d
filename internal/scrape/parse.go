package scrape

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order against a date cell. The legacy pages
// went through several templates over the years, so ISO, slash, dot
// and localized forms all occur in the wild.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"02.01.2006",
	"2006年1月2日",
	"1月2日", // year-less localized form, resolved against the current year
}

// clockLayouts are tried in order against a time cell after
// normalization of localized punctuation.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"15时04分",
}

// clockNormalizer maps localized clock punctuation onto what the
// layouts above expect.
var clockNormalizer = strings.NewReplacer(
	"：", ":", // full-width colon
	"ａｍ", "AM",
	"ｐｍ", "PM",
	"am", "AM",
	"pm", "PM",
)

// parseDate resolves a date cell to midnight of that day in the
// parser's zone, trying each known layout in order. An unmatched
// string produces a labeled error naming the offending value.
func (p *Parser) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, p.loc)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			// Year-less layout: the schedule only ever covers months
			// around the current one.
			now := time.Now().In(p.loc)
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseClockOn resolves a time-of-day cell onto the given day, trying
// each known layout in order.
func (p *Parser) parseClockOn(day time.Time, s string) (time.Time, error) {
	s = clockNormalizer.Replace(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time cell")
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, p.loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
