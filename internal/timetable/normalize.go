package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
)

// DefaultSummary is the last resort when an item carries neither
// class/course names nor a reason code.
const DefaultSummary = "Course"

// localDateTimeLayouts are tried in order against the upstream's
// human-readable date-time strings.
var localDateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalizer converts decoded schedule items into model.Event records,
// applying the fallback chains for instants, title, location and
// description.
type Normalizer struct {
	loc             *time.Location
	defaultDuration time.Duration
}

// NewNormalizer builds a Normalizer for the given IANA timezone name.
// defaultDuration is used whenever the source implies a missing or
// non-positive event duration.
func NewNormalizer(timezone string, defaultDuration time.Duration) (*Normalizer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("timetable: loading timezone %q: %w", timezone, err)
	}
	if defaultDuration <= 0 {
		return nil, fmt.Errorf("timetable: default duration must be positive, got %v", defaultDuration)
	}
	return &Normalizer{loc: loc, defaultDuration: defaultDuration}, nil
}

// Events normalizes one decoded response into event records, in
// discovery order. Items whose start cannot be resolved are skipped
// with a warning; they never abort the batch.
func (n *Normalizer) Events(resp *apiResponse) []model.Event {
	var events []model.Event

	for _, day := range resp.Data {
		for _, it := range day.Schedules {
			ev, ok := n.event(day.Date, it)
			if !ok {
				appLog.Warn("skipping schedule item with unresolvable times",
					"date", day.Date, "course", it.CourseName)
				continue
			}
			events = append(events, ev)
		}
	}

	return events
}

func (n *Normalizer) event(date string, it scheduleItem) (model.Event, bool) {
	start, ok := n.resolveInstant(it.StartTimeStr, it.StartTime)
	if !ok {
		return model.Event{}, false
	}
	end, ok := n.resolveInstant(it.EndTimeStr, it.EndTime)
	if !ok {
		// A missing end is still usable: fall back to the default
		// duration rather than dropping the item.
		end = start.Add(n.defaultDuration)
	}
	if !end.After(start) {
		end = start.Add(n.defaultDuration)
	}

	title := resolveTitle(it)
	location := resolveLocation(it)

	return model.Event{
		UID:         model.DeriveUID(date, rawStart(it), title, location),
		Summary:     title,
		Description: resolveDescription(title, it, location),
		Location:    location,
		Start:       start,
		End:         end,
	}, true
}

// resolveInstant runs the ordered fallback chain for a single instant:
// the human-readable local string first, then the millisecond epoch
// field interpreted in the configured zone.
func (n *Normalizer) resolveInstant(str string, millis *int64) (time.Time, bool) {
	extractors := []func() (time.Time, bool){
		func() (time.Time, bool) { return n.parseLocal(str) },
		func() (time.Time, bool) { return n.fromMillis(millis) },
	}
	for _, extract := range extractors {
		if t, ok := extract(); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) parseLocal(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) fromMillis(millis *int64) (time.Time, bool) {
	if millis == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*millis).In(n.loc), true
}

// resolveTitle runs the title fallback chain: class/course composite,
// then the bracketed reason code, then the generic label.
func resolveTitle(it scheduleItem) string {
	extractors := []func() (string, bool){
		func() (string, bool) { return composite(it.ClzName, it.CourseName) },
		func() (string, bool) {
			if it.Reason == "" {
				return "", false
			}
			return "【" + it.Reason + "】", true
		},
	}
	for _, extract := range extractors {
		if s, ok := extract(); ok {
			return s
		}
	}
	return DefaultSummary
}

// composite joins the non-empty of the two parts with a full-width
// separator; it reports false only when both are empty.
func composite(clz, course string) (string, bool) {
	parts := make([]string, 0, 2)
	for _, p := range []string{clz, course} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "｜"), true
}

func resolveLocation(it scheduleItem) string {
	if it.Place != "" {
		return it.Place
	}
	return it.CampusName
}

// resolveDescription composes whichever of title, teacher name and
// location are non-empty, one per line.
func resolveDescription(title string, it scheduleItem, location string) string {
	parts := make([]string, 0, 3)
	if title != "" {
		parts = append(parts, title)
	}
	if it.Teacher != nil && it.Teacher.Name != "" {
		parts = append(parts, it.Teacher.Name)
	}
	if location != "" {
		parts = append(parts, location)
	}
	return strings.Join(parts, "\n")
}

// rawStart is the UID ingredient for the start time: the string form
// when present, else the decimal millisecond value, else empty.
func rawStart(it scheduleItem) string {
	if it.StartTimeStr != "" {
		return it.StartTimeStr
	}
	if it.StartTime != nil {
		return strconv.FormatInt(*it.StartTime, 10)
	}
	return ""
}
