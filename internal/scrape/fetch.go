package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coursecal/internal/model"
)

// PageOptions describes how the legacy timetable page is retrieved.
type PageOptions struct {
	URL       string
	UserAgent string
	// Cookie, if non-empty, is sent verbatim as the Cookie header.
	Cookie  string
	Timeout time.Duration
}

// FetchEvents retrieves the legacy page over plain HTTP and parses its
// schedule table. A transport error or non-2xx status is fatal for the
// run, matching the API source's behavior.
func (p *Parser) FetchEvents(ctx context.Context, opts PageOptions) ([]model.Event, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("scrape: page URL is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: creating request: %w", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	if opts.Cookie != "" {
		req.Header.Set("Cookie", opts.Cookie)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetching %s: %w", opts.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("scrape: fetching %s: unexpected status %s", opts.URL, resp.Status)
	}

	return p.Parse(resp.Body)
}
