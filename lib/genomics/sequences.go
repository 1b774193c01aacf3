package genomics

import (
	"context"
	"net/url"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

type SequenceCount struct {
	Date  dates.Day `json:"date"`
	Count int64     `json:"total_count"`
}

// SequenceCounts returns the number of sequenced samples per day. An empty
// location returns the global series.
func (c Client) SequenceCounts(ctx context.Context, location string) ([]SequenceCount, error) {
	ctx, span := tracer.Start(ctx, "SequenceCounts")
	defer span.End()

	params := url.Values{}
	if location != "" {
		params.Set("location_id", location)
	}
	params.Set("cumulative", "false")
	params.Set("subadmin", "false")

	rows, err := outbreakapi.Results[[]SequenceCount](ctx, c.api, "genomics/sequence-count", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sequence counts")
		return nil, err
	}
	return rows, nil
}

// CumulativeSequenceCounts returns the cumulative number of sequenced
// samples to date, keyed by location (or "total_count" for a single
// location). subAdmin breaks the count down by the immediate lower admin
// level.
func (c Client) CumulativeSequenceCounts(ctx context.Context, location string, subAdmin bool) (map[string]int64, error) {
	ctx, span := tracer.Start(ctx, "CumulativeSequenceCounts")
	defer span.End()

	params := url.Values{}
	if location != "" {
		params.Set("location_id", location)
	}
	params.Set("cumulative", "true")
	params.Set("subadmin", outbreakapi.BoolString(subAdmin))

	counts, err := outbreakapi.Results[map[string]int64](ctx, c.api, "genomics/sequence-count", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch cumulative sequence counts")
		return nil, err
	}
	return counts, nil
}
