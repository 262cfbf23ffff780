package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// OData entity sets in the box's "index" service.
const (
	staySet = "Stay"
	moveSet = "Move"

	odataService = "index"
	maxPageSize  = 1000

	// visibilityWorkers bounds concurrent PROPFINDs in DayWithVisibility.
	visibilityWorkers = 4
)

// Stays returns the stays starting on day (in the client's time zone).
func (c *Client) Stays(ctx context.Context, day time.Time) ([]Record, error) {
	return c.queryDay(ctx, staySet, day)
}

// Moves returns the moves starting on day (in the client's time zone).
func (c *Client) Moves(ctx context.Context, day time.Time) ([]Record, error) {
	return c.queryDay(ctx, moveSet, day)
}

// Day fetches stays and moves concurrently and returns them merged and
// sorted by start time.
func (c *Client) Day(ctx context.Context, day time.Time) ([]Record, error) {
	var stays, moves []Record

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stays, err = c.Stays(gctx, day)

		return err
	})

	g.Go(func() error {
		var err error
		moves, err = c.Moves(gctx, day)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(stays)+len(moves))
	records = append(records, stays...)
	records = append(records, moves...)
	SortByStart(records)

	c.logger.Debug("fetched day",
		slog.String("day", day.Format(time.DateOnly)),
		slog.Int("stays", len(stays)),
		slog.Int("moves", len(moves)),
	)

	return records, nil
}

// Entry is a record together with its exported file and that file's
// current visibility.
type Entry struct {
	Record     Record
	Path       string
	Visibility Visibility
}

// DayWithVisibility is Day plus a visibility lookup of every record's
// exported file, at most visibilityWorkers at a time.
func (c *Client) DayWithVisibility(ctx context.Context, day time.Time) ([]Entry, error) {
	records, err := c.Day(ctx, day)
	if err != nil {
		return nil, err
	}

	boxURL, err := c.BoxURL()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(visibilityWorkers)

	for i, r := range records {
		entries[i] = Entry{Record: r, Path: ExportPath(boxURL, r, c.loc)}

		g.Go(func() error {
			v, err := c.Visibility(gctx, entries[i].Path)
			if err != nil {
				return fmt.Errorf("location: visibility of %s: %w", r.ID, err)
			}

			entries[i].Visibility = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}

// queryDay lists one entity set filtered to [day 00:00, next day 00:00).
func (c *Client) queryDay(ctx context.Context, set string, day time.Time) ([]Record, error) {
	boxURL, err := c.BoxURL()
	if err != nil {
		return nil, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("startTime ge %s and startTime lt %s", odataLiteral(start), odataLiteral(end)))
	q.Set("$orderby", "startTime")
	q.Set("$top", fmt.Sprint(maxPageSize))

	reqURL := boxURL + odataService + "/" + set + "?" + q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, http.MethodGet, reqURL, header, nil)
	if err != nil {
		return nil, fmt.Errorf("location: listing %s: %w", set, err)
	}
	defer resp.Body.Close()

	var page struct {
		D struct {
			Results []Record `json:"results"`
		} `json:"d"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("location: decoding %s: %w", set, err)
	}

	return page.D.Results, nil
}

// odataLiteral formats t as an OData datetimeoffset literal.
func odataLiteral(t time.Time) string {
	return "datetimeoffset'" + t.Format("2006-01-02T15:04:05.000Z07:00") + "'"
}
