package wastewater

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

var ErrNoData = fmt.Errorf("no data for query was found")

// Latest returns the most recent collection date among samples matching
// the filter.
func (c Client) Latest(ctx context.Context, filter Filter) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "Latest")
	defer span.End()

	params := url.Values{}
	params.Set("size", "1")
	params.Set("sort", "-collection_date")
	params.Set("fields", "collection_date")
	params.Set("q", filter.query())

	hits, err := outbreakapi.Hits[Sample](ctx, c.api, metadataEndpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch latest sample")
		return time.Time{}, err
	}
	if len(hits) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return time.Time{}, ErrNoData
	}
	return hits[0].CollectionDate.Time, nil
}

// Samples returns the metadata of every sample matching the filter.
// Unreported viral loads (-1 on the wire) come back nil and missing
// catchment populations default to DefaultPopulation.
func (c Client) Samples(ctx context.Context, filter Filter) ([]Sample, error) {
	ctx, span := tracer.Start(ctx, "Samples")
	defer span.End()

	params := url.Values{}
	params.Set("q", filter.query())

	rows, err := outbreakapi.ScrollHits[Sample](ctx, c.api, metadataEndpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch samples")
		return nil, err
	}
	if len(rows) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return nil, ErrNoData
	}

	for i := range rows {
		normalizeSample(&rows[i])
	}
	return rows, nil
}

func normalizeSample(s *Sample) {
	if s.ViralLoad != nil && *s.ViralLoad == -1 {
		s.ViralLoad = nil
	}
	if s.Population == nil {
		s.Population = Float(DefaultPopulation)
	}
}

// LineageAbundance is the demixed relative abundance of one lineage in
// one sample.
type LineageAbundance struct {
	Accession string  `json:"sra_accession"`
	Name      string  `json:"name"`
	Abundance float64 `json:"abundance"`
	Crumbs    string  `json:"crumbs"`
}

// SamplesByLineage finds samples containing a lineage above a minimum
// demixed abundance. descendants widens the match to the lineage's whole
// clade.
func (c Client) SamplesByLineage(ctx context.Context, lineage string, descendants bool, minAbundance float64) ([]LineageAbundance, error) {
	ctx, span := tracer.Start(ctx, "SamplesByLineage")
	defer span.End()

	if minAbundance <= 0 {
		minAbundance = 0.01
	}
	nameQuery := "name:" + lineage
	if descendants {
		nameQuery = outbreakapi.Crumbs("crumbs", lineage)
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("abundance:>=%g AND %s", minAbundance, nameQuery))

	rows, err := outbreakapi.ScrollHits[LineageAbundance](ctx, c.api, demixEndpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch samples by lineage")
		return nil, err
	}
	if len(rows) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return nil, ErrNoData
	}
	return rows, nil
}

// MutationFrequency is the read-level frequency of an alternate base at
// one genomic site in one sample.
type MutationFrequency struct {
	Accession string  `json:"sra_accession"`
	Site      int     `json:"site"`
	RefBase   string  `json:"ref_base"`
	AltBase   string  `json:"alt_base"`
	Frequency float64 `json:"frequency"`
	Depth     float64 `json:"depth"`
}

// SamplesByMutation finds samples carrying a mutation at a genomic site
// above a minimum read frequency. An empty altBase matches any base.
func (c Client) SamplesByMutation(ctx context.Context, site int, altBase string, minFrequency float64) ([]MutationFrequency, error) {
	ctx, span := tracer.Start(ctx, "SamplesByMutation")
	defer span.End()

	if minFrequency <= 0 {
		minFrequency = 0.01
	}
	query := fmt.Sprintf("frequency:>=%g AND site:%d", minFrequency, site)
	if altBase != "" {
		query += " AND alt_base:" + altBase
	}

	params := url.Values{}
	params.Set("q", query)

	rows, err := outbreakapi.ScrollHits[MutationFrequency](ctx, c.api, variantsEndpoint, params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch samples by mutation")
		return nil, err
	}
	if len(rows) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return nil, ErrNoData
	}
	return rows, nil
}
