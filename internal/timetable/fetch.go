package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
)

// Fetcher queries the timetable API over a sliding month window and
// normalizes the responses into event records.
//
// Requests are issued sequentially, one per window month; any
// transport error or non-2xx status aborts the whole run. The upstream
// publishes periodically and the surrounding scheduler re-invokes the
// pipeline, so there is no point in retrying or emitting partial
// output here.
type Fetcher struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
	cookie      string
	before      int
	after       int
	norm        *Normalizer
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// URLTemplate is the endpoint URL, normally carrying a ym=YYYY-MM
	// query token.
	URLTemplate string

	// Cookie, if non-empty, is sent verbatim as the Cookie header.
	Cookie string

	UserAgent string
	Timeout   time.Duration

	// WindowBefore / WindowAfter are the month offsets around the
	// current month, both non-negative.
	WindowBefore int
	WindowAfter  int
}

// NewFetcher builds a Fetcher around the given normalizer.
func NewFetcher(opts FetcherOptions, norm *Normalizer) (*Fetcher, error) {
	if opts.URLTemplate == "" {
		return nil, fmt.Errorf("timetable: URL template is empty")
	}
	if norm == nil {
		return nil, fmt.Errorf("timetable: normalizer is nil")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Fetcher{
		client:      &http.Client{Timeout: opts.Timeout},
		urlTemplate: opts.URLTemplate,
		userAgent:   opts.UserAgent,
		cookie:      opts.Cookie,
		before:      opts.WindowBefore,
		after:       opts.WindowAfter,
		norm:        norm,
	}, nil
}

// Fetch retrieves and normalizes every month in the window around now.
// Events are returned in discovery order; the caller sorts them.
func (f *Fetcher) Fetch(ctx context.Context, now time.Time) ([]model.Event, error) {
	urls := MonthURLs(f.urlTemplate, now, f.before, f.after)

	var events []model.Event
	for _, u := range urls {
		resp, err := f.fetchMonth(ctx, u)
		if err != nil {
			return nil, err
		}
		monthEvents := f.norm.Events(resp)
		appLog.Debug("month fetched", "url", u, "events", len(monthEvents))
		events = append(events, monthEvents...)
	}

	return events, nil
}

// fetchMonth issues a single GET and decodes the JSON body. A response
// without a data array decodes to zero day groups, which is not an
// error.
func (f *Fetcher) fetchMonth(ctx context.Context, url string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("timetable: creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timetable: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body content of an
		// error page is not interesting.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("timetable: fetching %s: unexpected status %s", url, resp.Status)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("timetable: decoding response from %s: %w", url, err)
	}

	return &out, nil
}
