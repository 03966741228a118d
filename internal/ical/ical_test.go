package ical

import (
	"strings"
	"testing"
	"time"

	"coursecal/internal/model"
)

func TestEscape(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"comma", "a,b", `a\,b`},
		{"semicolon", "a;b", `a\;b`},
		{"backslash", `a\b`, `a\\b`},
		{"newline", "a\nb", `a\nb`},
		{"crlf", "a\r\nb", `a\nb`},
		{"all four", "x,y;z\\w\nq", `x\,y\;z\\w\nq`},
		{"untouched", "plain text: 08:20 (3A｜Math)", "plain text: 08:20 (3A｜Math)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Escape(tc.in); got != tc.want {
				t.Errorf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func testEvents(t *testing.T) ([]model.Event, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return []model.Event{
		{
			UID:         "deadbeef@coursecal",
			Summary:     "3A｜Math",
			Description: "3A｜Math\nMs. Li\nRoom 101",
			Location:    "Room 101",
			Start:       time.Date(2025, 9, 1, 7, 0, 0, 0, loc),
			End:         time.Date(2025, 9, 1, 8, 20, 0, 0, loc),
		},
	}, loc
}

func TestBuildDocument(t *testing.T) {
	events, loc := testEvents(t)
	stamp := time.Date(2025, 9, 1, 0, 30, 0, 0, time.UTC)

	out := Build("Company Courses", loc, stamp, events)

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"X-WR-CALNAME:Company Courses\r\n",
		"CALSCALE:GREGORIAN\r\n",
		"METHOD:PUBLISH\r\n",
		"UID:deadbeef@coursecal\r\n",
		"DTSTAMP:20250901T003000Z\r\n",
		"DTSTART;TZID=Asia/Shanghai:20250901T070000\r\n",
		"DTEND;TZID=Asia/Shanghai:20250901T082000\r\n",
		"SUMMARY:3A｜Math\r\n",
		"LOCATION:Room 101\r\n",
		`DESCRIPTION:3A｜Math\nMs. Li\nRoom 101` + "\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("document missing %q:\n%s", want, out)
		}
	}

	if !strings.HasSuffix(out, "END:VCALENDAR\r\n") {
		t.Errorf("document must end with END:VCALENDAR and a trailing CRLF:\n%s", out)
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Error("document contains bare LF line endings")
	}
}

func TestBuildIdempotent(t *testing.T) {
	events, loc := testEvents(t)
	stamp := time.Date(2025, 9, 1, 0, 30, 0, 0, time.UTC)

	a := Build("Company Courses", loc, stamp, events)
	b := Build("Company Courses", loc, stamp, events)
	if a != b {
		t.Error("same events and stamp must produce byte-identical output")
	}
}

func TestBuildStampRenderedInUTC(t *testing.T) {
	events, loc := testEvents(t)
	// A local-zone stamp must still render as UTC.
	stamp := time.Date(2025, 9, 1, 8, 30, 0, 0, loc)

	out := Build("Company Courses", loc, stamp, events)
	if !strings.Contains(out, "DTSTAMP:20250901T003000Z\r\n") {
		t.Errorf("DTSTAMP not converted to UTC:\n%s", out)
	}
}

func TestBuildEmptyEventList(t *testing.T) {
	_, loc := testEvents(t)
	out := Build("Company Courses", loc, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), nil)

	if !strings.Contains(out, "BEGIN:VCALENDAR\r\n") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("empty event list should produce a zero-event document:\n%s", out)
	}
	if err := Validate(out); err != nil {
		t.Errorf("zero-event document failed validation: %v", err)
	}
}

func TestValidateAcceptsBuiltDocument(t *testing.T) {
	events, loc := testEvents(t)
	events[0].Summary = "Math, advanced; really\\hard\nstuff"

	out := Build("Company Courses", loc, time.Date(2025, 9, 1, 0, 30, 0, 0, time.UTC), events)
	if err := Validate(out); err != nil {
		t.Errorf("built document failed re-parse: %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if err := Validate("not a calendar\r\n"); err == nil {
		t.Error("expected validation failure for non-calendar input")
	}
}
