package genomics

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

// RecentDate is the most recent collection or submission date of a
// lineage, with the number of samples on that date.
type RecentDate struct {
	Date  dates.Day `json:"date"`
	Count int64     `json:"date_count"`
}

type RecentDateRequest struct {
	// required
	Lineage   string
	Mutations []string
	// optional location id, global when empty
	Location string
}

func (c Client) mostRecentDate(ctx context.Context, req RecentDateRequest, dateType string) (RecentDate, error) {
	ctx, span := tracer.Start(ctx, "mostRecentDate")
	defer span.End()

	if req.Lineage == "" {
		err := fmt.Errorf("a lineage is required")
		span.SetStatus(codes.Error, err.Error())
		return RecentDate{}, err
	}

	params := url.Values{}
	params.Set("pangolin_lineage", req.Lineage)
	if req.Location != "" {
		params.Set("location_id", req.Location)
	}
	if len(req.Mutations) > 0 {
		params.Set("mutations", strings.Join(req.Mutations, ","))
	}

	endpoint := fmt.Sprintf("genomics/most-recent-%s-date-by-location", dateType)
	out, err := outbreakapi.Results[RecentDate](ctx, c.api, endpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch most recent date")
		return RecentDate{}, err
	}
	return out, nil
}

// CollectionDate returns the most recent sample collection date for a
// lineage.
func (c Client) CollectionDate(ctx context.Context, req RecentDateRequest) (RecentDate, error) {
	return c.mostRecentDate(ctx, req, "collection")
}

// SubmissionDate returns the most recent sample submission date for a
// lineage.
func (c Client) SubmissionDate(ctx context.Context, req RecentDateRequest) (RecentDate, error) {
	return c.mostRecentDate(ctx, req, "submission")
}

// LagDay counts samples by (collection date, submission date) pair.
type LagDay struct {
	DateCollected dates.Day `json:"date_collected"`
	DateSubmitted dates.Day `json:"date_submitted"`
	TotalCount    int64     `json:"total_count"`
}

// DailyLag returns the daily lag between sample collection and submission
// dates. An empty location returns the global lag.
func (c Client) DailyLag(ctx context.Context, location string) ([]LagDay, error) {
	ctx, span := tracer.Start(ctx, "DailyLag")
	defer span.End()

	params := url.Values{}
	if location != "" {
		params.Set("location_id", location)
	}

	rows, err := outbreakapi.Results[[]LagDay](ctx, c.api, "genomics/collection-submission", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch collection-submission lag")
		return nil, err
	}
	return rows, nil
}
