package genomics

import (
	"context"
	"net/url"

	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

type Location struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	AdminLevel int    `json:"admin_level"`
	TotalCount int64  `json:"total_count"`
}

// LocationDetails resolves a location id to its details.
func (c Client) LocationDetails(ctx context.Context, id string) (Location, error) {
	ctx, span := tracer.Start(ctx, "LocationDetails")
	defer span.End()

	params := url.Values{}
	params.Set("id", id)

	out, err := outbreakapi.Results[Location](ctx, c.api, "genomics/location-lookup", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to look up location")
		return Location{}, err
	}
	return out, nil
}

// NameMatch is a name matched by a wildcard lookup along with the number
// of samples carrying it.
type NameMatch struct {
	Name       string `json:"name"`
	TotalCount int64  `json:"total_count"`
}

func (c Client) wildcard(ctx context.Context, endpoint, pattern string) ([]NameMatch, error) {
	ctx, span := tracer.Start(ctx, "wildcard")
	defer span.End()

	params := url.Values{}
	params.Set("name", pattern)

	rows, err := outbreakapi.Results[[]NameMatch](ctx, c.api, endpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to match names")
		return nil, err
	}
	return rows, nil
}

// WildcardLineage matches lineage names, the pattern must end with '*'.
func (c Client) WildcardLineage(ctx context.Context, pattern string) ([]NameMatch, error) {
	return c.wildcard(ctx, "genomics/lineage", pattern)
}

// WildcardMutations matches mutation names, the pattern must end with '*'.
func (c Client) WildcardMutations(ctx context.Context, pattern string) ([]NameMatch, error) {
	return c.wildcard(ctx, "genomics/mutations", pattern)
}

// WildcardLocation matches location names, the pattern must end with '*'.
func (c Client) WildcardLocation(ctx context.Context, pattern string) ([]Location, error) {
	ctx, span := tracer.Start(ctx, "WildcardLocation")
	defer span.End()

	params := url.Values{}
	params.Set("name", pattern)

	rows, err := outbreakapi.Results[[]Location](ctx, c.api, "genomics/location", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to match locations")
		return nil, err
	}
	return rows, nil
}
