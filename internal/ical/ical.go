package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"coursecal/internal/model"
)

const prodID = "-//coursecal//Course Sync//EN"

const (
	stampLayout = "20060102T150405Z" // DTSTAMP, always UTC
	localLayout = "20060102T150405"  // DTSTART/DTEND with TZID param
)

// Build renders the event list as a complete iCalendar document.
//
// Events must already be in the order the feed should carry them; the
// caller sorts. stamp is the generation time, captured once per run
// and shared by every event so that a run's output is a pure function
// of (events, stamp): identical inputs produce byte-identical output.
//
// Lines are CRLF-terminated, including the last one, per RFC 5545.
func Build(name string, loc *time.Location, stamp time.Time, events []model.Event) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"X-WR-CALNAME:" + Escape(name),
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	tzid := loc.String()
	dtstamp := stamp.UTC().Format(stampLayout)

	for _, ev := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+ev.UID,
			"DTSTAMP:"+dtstamp,
			fmt.Sprintf("DTSTART;TZID=%s:%s", tzid, ev.Start.In(loc).Format(localLayout)),
			fmt.Sprintf("DTEND;TZID=%s:%s", tzid, ev.End.In(loc).Format(localLayout)),
			"SUMMARY:"+Escape(ev.Summary),
			"LOCATION:"+Escape(ev.Location),
			"DESCRIPTION:"+Escape(ev.Description),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

// escaper implements the TEXT value quoting rule of RFC 5545 §3.3.11:
// backslash, comma and semicolon are backslash-escaped and embedded
// newlines become the literal sequence \n.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	",", `\,`,
	";", `\;`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// Escape quotes a text value for embedding in a property line.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Validate re-parses a built document so a serializer regression can
// never publish a feed that consuming applications would reject.
func Validate(doc string) error {
	if _, err := ics.ParseCalendar(strings.NewReader(doc)); err != nil {
		return fmt.Errorf("ical: built document failed to re-parse: %w", err)
	}
	return nil
}
