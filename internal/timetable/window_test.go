package timetable

import (
	"testing"
	"time"
)

func TestMonthURLsWindow(t *testing.T) {
	base := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	template := "https://api.example.com/timetable?ym=2025-09&tok=abc"

	urls := MonthURLs(template, base, 2, 5)

	want := []string{
		"https://api.example.com/timetable?ym=2025-07&tok=abc",
		"https://api.example.com/timetable?ym=2025-08&tok=abc",
		"https://api.example.com/timetable?ym=2025-09&tok=abc",
		"https://api.example.com/timetable?ym=2025-10&tok=abc",
		"https://api.example.com/timetable?ym=2025-11&tok=abc",
		"https://api.example.com/timetable?ym=2025-12&tok=abc",
		"https://api.example.com/timetable?ym=2026-01&tok=abc",
		"https://api.example.com/timetable?ym=2026-02&tok=abc",
	}

	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestMonthURLsYearRolloverBackward(t *testing.T) {
	base := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	urls := MonthURLs("https://x.example/t?ym=2026-01", base, 1, 1)

	want := []string{
		"https://x.example/t?ym=2025-12",
		"https://x.example/t?ym=2026-01",
		"https://x.example/t?ym=2026-02",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestMonthURLsWithoutToken(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	template := "https://api.example.com/timetable?tok=abc"

	urls := MonthURLs(template, base, 2, 5)

	if len(urls) != 1 {
		t.Fatalf("expected a single URL for a token-less template, got %d: %v", len(urls), urls)
	}
	if urls[0] != template {
		t.Errorf("got %q, want unmodified template %q", urls[0], template)
	}
}

func TestMonthURLsEndOfMonthBase(t *testing.T) {
	// Jan 31 + one month must land in February, not March.
	base := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	urls := MonthURLs("https://x.example/t?ym=2026-01", base, 0, 1)

	want := []string{
		"https://x.example/t?ym=2026-01",
		"https://x.example/t?ym=2026-02",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
