package model

import "time"

// Event is a single normalized timetable entry, ready for calendar
// serialization. Events are built fresh per run and never mutated after
// construction.
type Event struct {
	// UID is the content-derived identifier used by consuming calendar
	// applications to deduplicate and update events across publishes.
	// Two runs over unchanged upstream data produce identical UIDs.
	UID string

	Summary     string
	Description string
	Location    string

	// Start / End are timezone-aware; End is always strictly after Start
	// (a fallback duration is applied during normalization if the source
	// implies otherwise).
	Start time.Time
	End   time.Time
}
