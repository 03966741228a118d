package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultTimeout = 30 * time.Second

// Options defines parameters for a Chromium-based page fetch.
type Options struct {
	// URL of the script-rendered timetable page.
	URL string

	// WaitSelector, if set, is a CSS selector the fetch waits on before
	// reading the DOM, so the schedule table has actually been built.
	// If empty, the document body is awaited.
	WaitSelector string

	// Timeout bounds the entire fetch. If zero, a sane default is used.
	Timeout time.Duration
}

// FetchHTML launches a headless Chromium instance via chromedp,
// navigates to opts.URL, waits for the page to finish building its
// schedule table, and returns the rendered document's outer HTML.
//
// Some timetable deployments assemble the table client-side, so a
// plain GET returns an empty shell; this fetch path feeds the rendered
// markup into the same table parser the plain HTML source uses.
func FetchHTML(parentCtx context.Context, opts Options) (string, error) {
	if opts.URL == "" {
		return "", fmt.Errorf("browser: URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	wait := opts.WaitSelector
	if wait == "" {
		wait = "body"
	}

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(wait, chromedp.ByQuery),
		// Small extra delay to allow final DOM mutations.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("browser: chromedp run failed: %w", err)
	}

	return html, nil
}
