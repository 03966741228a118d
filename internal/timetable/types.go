package timetable

// The upstream timetable API is loosely typed: every field may be
// absent, empty or present depending on the kind of schedule entry
// (regular class, rest day placeholder, ...). The response is mapped
// into these types at the decode boundary; numeric and structured
// fields use pointers so that absence stays distinguishable from a
// zero value, text fields treat "" as absent.

type apiResponse struct {
	Data []dayGroup `json:"data"`
}

// dayGroup holds all schedule items for one calendar date.
type dayGroup struct {
	Date      string         `json:"date"`
	Schedules []scheduleItem `json:"schedules"`
}

type teacherInfo struct {
	Name string `json:"name"`
}

// scheduleItem is one class/course/reason entry within a day group.
type scheduleItem struct {
	// Human-readable local date-times, e.g. "2025-09-01 07:00".
	StartTimeStr string `json:"starttimeStr"`
	EndTimeStr   string `json:"endtimeStr"`

	// Millisecond epoch timestamps, used when the string forms are absent.
	StartTime *int64 `json:"starttime"`
	EndTime   *int64 `json:"endtime"`

	CourseName string `json:"courseName"`
	ClzName    string `json:"clzName"`

	// Reason is set on placeholder entries (rest days, holidays).
	Reason string `json:"reason"`

	Place      string `json:"place"`
	CampusName string `json:"campusname"`

	Teacher *teacherInfo `json:"teacher"`
}
