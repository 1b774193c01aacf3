package genomics

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

// MutationPrevalence is the prevalence of a single mutation within a
// lineage.
type MutationPrevalence struct {
	// the server-side query this row answers, useful when several
	// lineages are requested at once
	Query string `json:"-"`

	Mutation      string  `json:"mutation"`
	Lineage       string  `json:"lineage"`
	Gene          string  `json:"gene"`
	RefAA         string  `json:"ref_aa"`
	AltAA         string  `json:"alt_aa"`
	CodonNum      int     `json:"codon_num"`
	Type          string  `json:"type"`
	MutationCount int64   `json:"mutation_count"`
	LineageCount  int64   `json:"lineage_count"`
	Prevalence    float64 `json:"prevalence"`
}

const DefaultMutationFrequency = 0.8

type LineageMutationsRequest struct {
	// lineage names, "OR" inside a single entry unions lineages
	// server-side (e.g. "BA.2 OR BA.1")
	Lineages []string
	// match the whole clade below Lineages[0] instead of exact names
	Ancestors bool
	Mutations []string
	// minimum in-lineage frequency, <= 0 means DefaultMutationFrequency
	Frequency float64
}

// LineageMutations retrieves all mutations in a lineage above a frequency
// threshold.
func (c Client) LineageMutations(ctx context.Context, req LineageMutationsRequest) ([]MutationPrevalence, error) {
	ctx, span := tracer.Start(ctx, "LineageMutations")
	defer span.End()

	params := url.Values{}
	lineageParams(params, req.Lineages, req.Ancestors)
	if len(req.Mutations) > 0 {
		params.Set("mutations", strings.Join(req.Mutations, ","))
	}
	freq := req.Frequency
	if freq <= 0 {
		freq = DefaultMutationFrequency
	}
	params.Set("frequency", strconv.FormatFloat(freq, 'g', -1, 64))

	byQuery, err := outbreakapi.Results[map[string][]MutationPrevalence](
		ctx, c.api, "genomics/lineage-mutations", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch lineage mutations")
		return nil, err
	}
	return flattenResults(byQuery, func(r *MutationPrevalence, q string) {
		r.Query = q
	}), nil
}

// LineageMutationPrevalence is the prevalence of a mutation (or mutation
// set) within a single PANGO lineage.
type LineageMutationPrevalence struct {
	Query string `json:"-"`

	Lineage        string  `json:"pangolin_lineage"`
	LineageCount   int64   `json:"lineage_count"`
	MutationCount  int64   `json:"mutation_count"`
	Proportion     float64 `json:"proportion"`
	ProportionLow  float64 `json:"proportion_ci_lower"`
	ProportionHigh float64 `json:"proportion_ci_upper"`
}

type MutationsByLineageRequest struct {
	// mutation names, AND logic
	Mutations []string
	// optional location id, global when empty
	Location string
	// optional, all lineages containing the mutations when empty
	Lineages  []string
	Ancestors bool
	// optional collection date window
	DateMin time.Time
	DateMax time.Time
}

// MutationsByLineage returns the prevalence of a mutation or series of
// mutations across lineages.
func (c Client) MutationsByLineage(ctx context.Context, req MutationsByLineageRequest) ([]LineageMutationPrevalence, error) {
	ctx, span := tracer.Start(ctx, "MutationsByLineage")
	defer span.End()

	params := url.Values{}
	if len(req.Mutations) > 0 {
		params.Set("mutations", outbreakapi.AndJoin(req.Mutations))
	}
	if len(req.Lineages) > 0 {
		lineageParams(params, req.Lineages, req.Ancestors)
	}
	if req.Location != "" {
		params.Set("location_id", req.Location)
	}
	if !req.DateMin.IsZero() {
		params.Set("datemin", dates.Format(req.DateMin))
	}
	if !req.DateMax.IsZero() {
		params.Set("datemax", dates.Format(req.DateMax))
	}

	byQuery, err := outbreakapi.Results[map[string][]LineageMutationPrevalence](
		ctx, c.api, "genomics/mutations-by-lineage", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch mutations by lineage")
		return nil, err
	}
	return flattenResults(byQuery, func(r *LineageMutationPrevalence, q string) {
		r.Query = q
	}), nil
}

type MutationDetail struct {
	Mutation string `json:"mutation"`
	Gene     string `json:"gene"`
	RefAA    string `json:"ref_aa"`
	AltAA    string `json:"alt_aa"`
	CodonNum int    `json:"codon_num"`
	Type     string `json:"type"`
}

// MutationDetails returns the details of the given mutations.
func (c Client) MutationDetails(ctx context.Context, mutations []string) ([]MutationDetail, error) {
	ctx, span := tracer.Start(ctx, "MutationDetails")
	defer span.End()

	params := url.Values{}
	params.Set("mutations", strings.Join(mutations, ","))

	rows, err := outbreakapi.Results[[]MutationDetail](ctx, c.api, "genomics/mutation-details", params, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch mutation details")
		return nil, err
	}
	return rows, nil
}
