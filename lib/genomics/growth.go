package genomics

import (
	"context"
	"fmt"
	"net/url"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

// GrowthRate is a lineage's estimated growth rate in a location on one
// day.
type GrowthRate struct {
	Lineage  string `json:"-"`
	Location string `json:"-"`

	Date        dates.Day `json:"date"`
	Growth      float64   `json:"G_7"`
	Count       float64   `json:"N_7"`
	Prevalence  float64   `json:"Prevalence_7"`
	DeltaGrowth float64   `json:"deltaG_7"`
}

type growthRateHit struct {
	Lineage  string       `json:"lineage"`
	Location string       `json:"location"`
	Values   []GrowthRate `json:"values"`
}

// GrowthRates returns the growth rate series of the given lineages in the
// given locations ("Global" is a valid location).
func (c Client) GrowthRates(ctx context.Context, lineages, locations []string) ([]GrowthRate, error) {
	ctx, span := tracer.Start(ctx, "GrowthRates")
	defer span.End()

	if len(lineages) == 0 {
		err := fmt.Errorf("at least one lineage is required")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(locations) == 0 {
		locations = []string{"Global"}
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf(
		"lineage:(%s) AND location:(%s)",
		outbreakapi.OrJoin(lineages),
		outbreakapi.OrJoin(locations),
	))

	hits, err := outbreakapi.Hits[growthRateHit](ctx, c.api, "growth_rate/query", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch growth rates")
		return nil, err
	}

	var rows []GrowthRate
	for _, hit := range hits {
		for _, value := range hit.Values {
			value.Lineage = hit.Lineage
			value.Location = hit.Location
			rows = append(rows, value)
		}
	}
	return rows, nil
}

// SignificantGrowth flags a lineage whose recent growth behavior stands
// out in a location.
type SignificantGrowth struct {
	Lineage      string  `json:"lineage"`
	Location     string  `json:"location"`
	Growth       float64 `json:"G_7"`
	Significance float64 `json:"significance"`
}

// GrowthRateSignificance returns the lineages with the most significant
// growth behavior in the given locations.
func (c Client) GrowthRateSignificance(ctx context.Context, locations []string) ([]SignificantGrowth, error) {
	ctx, span := tracer.Start(ctx, "GrowthRateSignificance")
	defer span.End()

	if len(locations) == 0 {
		locations = []string{"Global"}
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("location:(%s)", outbreakapi.OrJoin(locations)))

	rows, err := outbreakapi.Hits[SignificantGrowth](ctx, c.api, "significance/query", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch growth significance")
		return nil, err
	}
	return rows, nil
}
