package scrape

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
	"coursecal/internal/timetable"
)

// Columns maps fixed zero-based cell positions within a schedule row.
type Columns struct {
	Date        int
	StartTime   int
	EndTime     int
	Title       int
	Location    int
	Description int
}

// Parser extracts event records from the legacy server-rendered
// timetable page: a plain table whose rows are selected by a CSS
// selector, with fixed column positions. Older deployments emit dates
// and clock times in several inconsistent formats, so both go through
// ordered parser chains.
type Parser struct {
	loc             *time.Location
	defaultDuration time.Duration
	rowSelector     string
	columns         Columns
}

// NewParser builds a Parser for the given IANA timezone name.
func NewParser(timezone string, defaultDuration time.Duration, rowSelector string, columns Columns) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scrape: loading timezone %q: %w", timezone, err)
	}
	if defaultDuration <= 0 {
		return nil, fmt.Errorf("scrape: default duration must be positive, got %v", defaultDuration)
	}
	if rowSelector == "" {
		return nil, fmt.Errorf("scrape: row selector is empty")
	}
	return &Parser{
		loc:             loc,
		defaultDuration: defaultDuration,
		rowSelector:     rowSelector,
		columns:         columns,
	}, nil
}

// Parse reads an HTML document and extracts one event per schedule
// row. Rows that fail to normalize are skipped with a diagnostic; they
// never abort the batch. A document whose selector matches nothing
// yields zero events.
func (p *Parser) Parse(r io.Reader) ([]model.Event, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("scrape: parsing HTML: %w", err)
	}

	var events []model.Event
	doc.Find(p.rowSelector).Each(func(i int, row *goquery.Selection) {
		ev, err := p.row(row)
		if err != nil {
			appLog.Warn("skipping malformed table row", "row", i, "reason", err)
			return
		}
		events = append(events, ev)
	})

	return events, nil
}

func (p *Parser) row(row *goquery.Selection) (model.Event, error) {
	cells := row.Find("td")
	need := maxColumn(p.columns) + 1
	if cells.Length() < need {
		return model.Event{}, fmt.Errorf("row has %d cells, need %d", cells.Length(), need)
	}
	cell := func(idx int) string {
		return strings.TrimSpace(cells.Eq(idx).Text())
	}

	rawDate := cell(p.columns.Date)
	day, err := p.parseDate(rawDate)
	if err != nil {
		return model.Event{}, err
	}

	rawStart := cell(p.columns.StartTime)
	start, err := p.parseClockOn(day, rawStart)
	if err != nil {
		return model.Event{}, err
	}

	end, err := p.parseClockOn(day, cell(p.columns.EndTime))
	if err != nil || !end.After(start) {
		// Degenerate or missing end times are corrected, not rejected.
		end = start.Add(p.defaultDuration)
	}

	title := cell(p.columns.Title)
	if title == "" {
		title = timetable.DefaultSummary
	}
	location := cell(p.columns.Location)

	return model.Event{
		UID:         model.DeriveUID(rawDate, rawStart, title, location),
		Summary:     title,
		Description: cell(p.columns.Description),
		Location:    location,
		Start:       start,
		End:         end,
	}, nil
}

func maxColumn(c Columns) int {
	max := c.Date
	for _, v := range []int{c.StartTime, c.EndTime, c.Title, c.Location, c.Description} {
		if v > max {
			max = v
		}
	}
	return max
}
