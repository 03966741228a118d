package model

import (
	"regexp"
	"strings"
	"testing"
)

var uidShape = regexp.MustCompile(`^[0-9a-f]{40}@coursecal$`)

func TestDeriveUIDShape(t *testing.T) {
	uid := DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜Math", "Room 101")
	if !uidShape.MatchString(uid) {
		t.Errorf("UID %q does not match sha1-hex + tag shape", uid)
	}
}

func TestDeriveUIDDeterministic(t *testing.T) {
	a := DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜Math", "Room 101")
	b := DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜Math", "Room 101")
	if a != b {
		t.Errorf("identical inputs produced different UIDs: %q vs %q", a, b)
	}
}

func TestDeriveUIDSensitiveToEachInput(t *testing.T) {
	base := DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜Math", "Room 101")

	cases := []struct {
		name string
		uid  string
	}{
		{"date", DeriveUID("2025-09-02", "2025-09-01 07:00", "3A｜Math", "Room 101")},
		{"raw start", DeriveUID("2025-09-01", "1735700400000", "3A｜Math", "Room 101")},
		{"title", DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜English", "Room 101")},
		{"location", DeriveUID("2025-09-01", "2025-09-01 07:00", "3A｜Math", "Room 102")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.uid == base {
				t.Errorf("changing %s did not change the UID", tc.name)
			}
		})
	}
}

func TestDeriveUIDEmptyFields(t *testing.T) {
	uid := DeriveUID("", "", "", "")
	if !strings.HasSuffix(uid, "@coursecal") {
		t.Errorf("UID %q missing domain tag", uid)
	}
	if !uidShape.MatchString(uid) {
		t.Errorf("UID %q malformed for empty inputs", uid)
	}
}
