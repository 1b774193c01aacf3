package dates

import (
	"bytes"
	"fmt"
	"time"
)

// the API reports calendar dates (no time of day) in this layout
const Layout = "2006-01-02"

func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.In(time.UTC).Format(Layout)
}

// Day is a calendar date as it appears in API responses.
//
// force dates into UTC because comparing a PST-parsed date against a
// UTC-parsed one will silently shift bins by a day when aggregating.
type Day struct {
	time.Time
}

func On(year int, month time.Month, day int) Day {
	return Day{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Day) String() string {
	return Format(d.Time)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(d.Time) + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}
	// some endpoints return full timestamps for date fields
	if t, err := time.Parse(time.RFC3339, string(data)); err == nil {
		d.Time = t.UTC()
		return nil
	}
	t, err := Parse(string(data))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
