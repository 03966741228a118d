package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"coursecal/internal/browser"
	"coursecal/internal/config"
	"coursecal/internal/ical"
	appLog "coursecal/internal/log"
	"coursecal/internal/model"
	"coursecal/internal/scrape"
	"coursecal/internal/timetable"
)

// Run executes one full pipeline cycle: fetch the timetable through
// the configured source, sort the normalized events, serialize them
// into a calendar document and write it to the configured output path.
//
// Any upstream failure aborts the cycle with no output written; the
// previously published file stays in place.
func Run(ctx context.Context, cfg *config.Config) error {
	now := time.Now()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("app: loading timezone %q: %w", cfg.Timezone, err)
	}

	events, err := fetchEvents(ctx, cfg, now)
	if err != nil {
		return err
	}

	// Stable feed order: by start time, ties broken by UID so repeated
	// runs over unchanged data are byte-identical up to DTSTAMP.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].UID < events[j].UID
	})

	doc := ical.Build(cfg.CalendarName, loc, now, events)
	if err := ical.Validate(doc); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	if err := writeFile(cfg.OutputPath, []byte(doc)); err != nil {
		return fmt.Errorf("app: writing %s: %w", cfg.OutputPath, err)
	}

	appLog.Info("calendar written", "path", cfg.OutputPath, "events", len(events))
	return nil
}

func fetchEvents(ctx context.Context, cfg *config.Config, now time.Time) ([]model.Event, error) {
	cookie := os.Getenv(cfg.CookieEnv)
	if cookie == "" {
		appLog.Debug("cookie environment variable unset, requesting unauthenticated",
			"env", cfg.CookieEnv)
	}

	duration := time.Duration(cfg.DefaultDurationMinutes) * time.Minute
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Source {
	case config.SourceAPI:
		norm, err := timetable.NewNormalizer(cfg.Timezone, duration)
		if err != nil {
			return nil, err
		}
		fetcher, err := timetable.NewFetcher(timetable.FetcherOptions{
			URLTemplate:  cfg.URL,
			Cookie:       cookie,
			UserAgent:    cfg.UserAgent,
			Timeout:      timeout,
			WindowBefore: cfg.Window.Before,
			WindowAfter:  cfg.Window.After,
		}, norm)
		if err != nil {
			return nil, err
		}
		return fetcher.Fetch(ctx, now)

	case config.SourceHTML:
		parser, err := tableParser(cfg, duration)
		if err != nil {
			return nil, err
		}
		return parser.FetchEvents(ctx, scrape.PageOptions{
			URL:       cfg.URL,
			UserAgent: cfg.UserAgent,
			Cookie:    cookie,
			Timeout:   timeout,
		})

	case config.SourceBrowser:
		parser, err := tableParser(cfg, duration)
		if err != nil {
			return nil, err
		}
		html, err := browser.FetchHTML(ctx, browser.Options{
			URL:          cfg.URL,
			WaitSelector: cfg.HTML.RowSelector,
			Timeout:      timeout,
		})
		if err != nil {
			return nil, err
		}
		return parser.Parse(strings.NewReader(html))

	default:
		return nil, fmt.Errorf("app: unknown source %q", cfg.Source)
	}
}

func tableParser(cfg *config.Config, duration time.Duration) (*scrape.Parser, error) {
	return scrape.NewParser(cfg.Timezone, duration, cfg.HTML.RowSelector, scrape.Columns{
		Date:        cfg.HTML.Columns.Date,
		StartTime:   cfg.HTML.Columns.StartTime,
		EndTime:     cfg.HTML.Columns.EndTime,
		Title:       cfg.HTML.Columns.Title,
		Location:    cfg.HTML.Columns.Location,
		Description: cfg.HTML.Columns.Description,
	})
}

// writeFile writes atomically via a temp file + rename so subscribers
// never observe a half-written feed.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".coursecal-*.ics")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
