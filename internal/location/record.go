package location

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// Kind distinguishes stays (time spent at a place) from moves (travel
// between places).
type Kind string

const (
	KindStay Kind = "stay"
	KindMove Kind = "move"
)

// Record is one stay or move row from the box's OData service.
type Record struct {
	ID        string
	Kind      Kind
	StartTime time.Time
	EndTime   time.Time

	// Stay fields.
	PlaceID   string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64

	// Move fields.
	ActivityType string
	Distance     float64
}

// wireRecord is the OData JSON shape. Stays carry placeId; moves do not.
type wireRecord struct {
	ID           string   `json:"__id"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	PlaceID      *string  `json:"placeId"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	ActivityType string   `json:"activityType"`
	Distance     *float64 `json:"distance"`
}

// UnmarshalJSON decodes an OData entity. Kind is Stay when placeId is present
// (even if empty), Move otherwise.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	start, err := ParseODataDate(w.StartTime)
	if err != nil {
		return fmt.Errorf("location: record %s startTime: %w", w.ID, err)
	}

	var end time.Time
	if w.EndTime != "" {
		if end, err = ParseODataDate(w.EndTime); err != nil {
			return fmt.Errorf("location: record %s endTime: %w", w.ID, err)
		}
	}

	*r = Record{
		ID:           w.ID,
		Kind:         KindMove,
		StartTime:    start,
		EndTime:      end,
		Name:         w.Name,
		Address:      w.Address,
		Latitude:     w.Latitude,
		Longitude:    w.Longitude,
		ActivityType: w.ActivityType,
	}

	if w.PlaceID != nil {
		r.Kind = KindStay
		r.PlaceID = *w.PlaceID
	}

	if w.Distance != nil {
		r.Distance = *w.Distance
	}

	return nil
}

var odataDateRE = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// ParseODataDate parses the "/Date(1577836800000)/" form used by OData v2
// JSON. An optional "+hhmm" offset is accepted and ignored, since the
// millisecond value is already UTC.
func ParseODataDate(s string) (time.Time, error) {
	m := odataDateRE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not an OData date: %q", s)
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("OData date %q: %w", s, err)
	}

	return time.UnixMilli(ms).UTC(), nil
}

// ExportPath is the URL of the JSON file a record was exported to:
// {box}exported/{YYYY-MM-DD}/{s|m}_{startMillis}.json, with the date folder
// taken in loc.
func ExportPath(boxURL string, r Record, loc *time.Location) string {
	prefix := "m"
	if r.Kind == KindStay {
		prefix = "s"
	}

	return fmt.Sprintf("%sexported/%s/%s_%d.json",
		boxURL,
		r.StartTime.In(loc).Format(time.DateOnly),
		prefix,
		r.StartTime.UnixMilli(),
	)
}

// SortByStart orders records by start time, oldest first. Ties keep their
// input order.
func SortByStart(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.StartTime.Compare(b.StartTime)
	})
}
