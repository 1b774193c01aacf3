package genomics

import (
	"context"
	"fmt"
	"net/url"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

// Smoothing selects which daily case signal to pull.
type Smoothing int

const (
	// raw daily increase in confirmed cases
	SmoothingNone Smoothing = iota
	// 7-day rolling average
	SmoothingRolling
	SmoothingBoth
)

func (s Smoothing) fields() (string, error) {
	switch s {
	case SmoothingNone:
		return "confirmed_numIncrease", nil
	case SmoothingRolling:
		return "confirmed_rolling", nil
	case SmoothingBoth:
		return "confirmed_numIncrease,confirmed_rolling", nil
	}
	return "", fmt.Errorf("invalid smoothing value: %d", s)
}

type CaseCount struct {
	Date dates.Day `json:"date"`
	// raw daily increase, zero unless requested
	NewCases float64 `json:"confirmed_numIncrease"`
	// rolling average, zero unless requested
	RollingAverage float64 `json:"confirmed_rolling"`
}

// CasesByLocation returns daily confirmed case counts for one or more
// location ids, sorted by date. This endpoint tolerates anonymous access.
func (c Client) CasesByLocation(ctx context.Context, locations []string, smoothing Smoothing) ([]CaseCount, error) {
	ctx, span := tracer.Start(ctx, "CasesByLocation")
	defer span.End()

	if len(locations) == 0 {
		err := fmt.Errorf("please enter at least 1 valid location id")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	fields, err := smoothing.fields()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("location_id:(%s)", outbreakapi.OrJoin(locations)))
	params.Set("sort", "date")
	params.Set("fields", "date,admin1,"+fields)

	rows, err := outbreakapi.ScrollHits[CaseCount](ctx, c.api, "covid19/query", params, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch case counts")
		return nil, err
	}
	return rows, nil
}
