package genomics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

// LineagePrevalence is the prevalence of a lineage in a location on a
// single day.
type LineagePrevalence struct {
	Query string `json:"-"`

	Date              dates.Day `json:"date"`
	TotalCount        int64     `json:"total_count"`
	LineageCount      int64     `json:"lineage_count"`
	Prevalence        float64   `json:"proportion"`
	PrevalenceRolling float64   `json:"proportion_rolling"`
}

type PrevalenceRequest struct {
	// required
	Lineages []string
	// optional location id, global when empty
	Location  string
	Mutations []string
	Ancestors bool
	// optional collection date window
	DateMin time.Time
	DateMax time.Time
}

func (req PrevalenceRequest) params(cumulative bool) (url.Values, error) {
	if len(req.Lineages) == 0 {
		return nil, fmt.Errorf("at least one lineage is required")
	}
	params := url.Values{}
	lineageParams(params, req.Lineages, req.Ancestors)
	if req.Location != "" {
		params.Set("location_id", req.Location)
	}
	if len(req.Mutations) > 0 {
		params.Set("mutations", outbreakapi.AndJoin(req.Mutations))
	}
	params.Set("cumulative", outbreakapi.BoolString(cumulative))
	if !req.DateMin.IsZero() {
		params.Set("datemin", dates.Format(req.DateMin))
	}
	if !req.DateMax.IsZero() {
		params.Set("datemax", dates.Format(req.DateMax))
	}
	return params, nil
}

// PrevalenceByLocation returns the daily prevalence of PANGO lineages in a
// location.
func (c Client) PrevalenceByLocation(ctx context.Context, req PrevalenceRequest) ([]LineagePrevalence, error) {
	ctx, span := tracer.Start(ctx, "PrevalenceByLocation")
	defer span.End()

	params, err := req.params(false)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	byQuery, err := outbreakapi.Results[map[string][]LineagePrevalence](
		ctx, c.api, "genomics/prevalence-by-location", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch lineage prevalence")
		return nil, err
	}
	return flattenResults(byQuery, func(r *LineagePrevalence, q string) {
		r.Query = q
	}), nil
}

// GlobalPrevalence is PrevalenceByLocation without a location filter.
func (c Client) GlobalPrevalence(ctx context.Context, lineages []string, ancestors bool) ([]LineagePrevalence, error) {
	return c.PrevalenceByLocation(ctx, PrevalenceRequest{
		Lineages:  lineages,
		Ancestors: ancestors,
	})
}

// CumulativePrevalence summarizes a lineage's prevalence since its first
// detection.
type CumulativePrevalence struct {
	GlobalPrevalence float64   `json:"global_prevalence"`
	TotalCount       int64     `json:"total_count"`
	LineageCount     int64     `json:"lineage_count"`
	FirstDetected    dates.Day `json:"first_detected"`
	LastDetected     dates.Day `json:"last_detected"`
}

// CumulativePrevalence returns the cumulative prevalence of the requested
// lineages since the first day of detection.
func (c Client) CumulativePrevalence(ctx context.Context, req PrevalenceRequest) (CumulativePrevalence, error) {
	ctx, span := tracer.Start(ctx, "CumulativePrevalence")
	defer span.End()

	params, err := req.params(true)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return CumulativePrevalence{}, err
	}

	out, err := outbreakapi.Results[CumulativePrevalence](
		ctx, c.api, "genomics/prevalence-by-location", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch cumulative prevalence")
		return CumulativePrevalence{}, err
	}
	return out, nil
}

// LineageDailyPrevalence is one lineage's share of sequenced samples on
// one day, from the all-lineages breakdown of a location.
type LineageDailyPrevalence struct {
	Date              dates.Day `json:"date"`
	Lineage           string    `json:"lineage"`
	Prevalence        float64   `json:"prevalence"`
	PrevalenceRolling float64   `json:"prevalence_rolling"`
	LineageCount      int64     `json:"lineage_count"`
	TotalCount        int64     `json:"total_count"`
}

type AllLineagePrevalencesRequest struct {
	// required location id
	Location string
	// window (days before today) used to fold rare lineages into
	// "Other", defaults to 180
	NDays int
	// minimum number of days below OtherThreshold before a lineage is
	// folded into "Other", defaults to 10
	NDayThreshold int
	// minimum prevalence below which lineages accumulate under "Other",
	// defaults to 0.05
	OtherThreshold float64
	// lineages never folded into "Other"
	OtherExclude []string
	Cumulative   bool
	// keep only lineages whose name starts with this prefix
	StartsWith string
}

// AllLineagePrevalences returns the daily prevalence of every lineage
// observed in a location, rare lineages folded into "Other".
func (c Client) AllLineagePrevalences(ctx context.Context, req AllLineagePrevalencesRequest) ([]LineageDailyPrevalence, error) {
	ctx, span := tracer.Start(ctx, "AllLineagePrevalences")
	defer span.End()

	if req.Location == "" {
		err := fmt.Errorf("a location id is required")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ndays := req.NDays
	if ndays <= 0 {
		ndays = 180
	}
	ndayThreshold := req.NDayThreshold
	if ndayThreshold <= 0 {
		ndayThreshold = 10
	}
	otherThreshold := req.OtherThreshold
	if otherThreshold <= 0 {
		otherThreshold = 0.05
	}

	params := url.Values{}
	params.Set("location_id", req.Location)
	params.Set("ndays", strconv.Itoa(ndays))
	params.Set("nday_threshold", strconv.Itoa(ndayThreshold))
	params.Set("other_threshold", strconv.FormatFloat(otherThreshold, 'g', -1, 64))
	params.Set("cumulative", outbreakapi.BoolString(req.Cumulative))
	if len(req.OtherExclude) > 0 {
		params.Set("other_exclude", strings.Join(req.OtherExclude, ","))
	}

	rows, err := outbreakapi.Results[[]LineageDailyPrevalence](
		ctx, c.api, "genomics/prevalence-by-location-all-lineages", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch lineage prevalences")
		return nil, err
	}

	if req.StartsWith == "" {
		return rows, nil
	}
	var filtered []LineageDailyPrevalence
	for _, row := range rows {
		if strings.HasPrefix(row.Lineage, req.StartsWith) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// SubAdminPrevalence is the cumulative prevalence of a lineage in one
// sub-division of a location.
type SubAdminPrevalence struct {
	Query string `json:"-"`

	Name         string    `json:"name"`
	ID           string    `json:"id"`
	Date         dates.Day `json:"date"`
	TotalCount   int64     `json:"total_count"`
	LineageCount int64     `json:"lineage_count"`
	Proportion   float64   `json:"proportion"`
}

type LineageBySubAdminRequest struct {
	// required
	Lineages []string
	// mutation names, AND logic
	Mutations []string
	// optional location id, country level globally when empty
	Location string
	// number of days from today to accumulate counts over, unlimited
	// when 0
	NDays int
	// only return sub-divisions where the lineage was detected
	Detected bool
}

// LineageBySubAdmin returns the cumulative prevalence of a lineage broken
// down by the immediate admin level below a location.
func (c Client) LineageBySubAdmin(ctx context.Context, req LineageBySubAdminRequest) ([]SubAdminPrevalence, error) {
	ctx, span := tracer.Start(ctx, "LineageBySubAdmin")
	defer span.End()

	if len(req.Lineages) == 0 {
		err := fmt.Errorf("at least one lineage is required")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	params := url.Values{}
	params.Set("pangolin_lineage", strings.Join(req.Lineages, ","))
	if len(req.Mutations) > 0 {
		params.Set("mutations", outbreakapi.AndJoin(req.Mutations))
	}
	if req.Location != "" {
		params.Set("location_id", req.Location)
	}
	if req.NDays > 0 {
		params.Set("ndays", strconv.Itoa(req.NDays))
	}
	params.Set("detected", outbreakapi.BoolString(req.Detected))

	byQuery, err := outbreakapi.Results[map[string][]SubAdminPrevalence](
		ctx, c.api, "genomics/lineage-by-sub-admin-most-recent", params, true,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sub-admin prevalence")
		return nil, err
	}
	return flattenResults(byQuery, func(r *SubAdminPrevalence, q string) {
		r.Query = q
	}), nil
}
