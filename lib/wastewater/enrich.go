package wastewater

import (
	"context"

	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel/codes"
)

func accessions(samples []Sample) []string {
	seen := make(map[string]struct{}, len(samples))
	var ids []string
	for _, s := range samples {
		if _, ok := seen[s.Accession]; ok {
			continue
		}
		seen[s.Accession] = struct{}{}
		ids = append(ids, s.Accession)
	}
	return ids
}

// join pairs every sample with every fetched row sharing its accession,
// an inner join: samples the server could not match are dropped.
func join[T any, O any](samples []Sample, rows []T, id func(T) string, combine func(Sample, T) O) []O {
	byAccession := make(map[string][]T)
	for _, row := range rows {
		key := id(row)
		byAccession[key] = append(byAccession[key], row)
	}

	var out []O
	for _, sample := range samples {
		for _, row := range byAccession[sample.Accession] {
			out = append(out, combine(sample, row))
		}
	}
	return out
}

// Metadata fetches fresh metadata for a set of samples, merged back onto
// the input set: samples the server could not match are dropped and a
// sample appearing twice comes back twice.
func (c Client) Metadata(ctx context.Context, samples []Sample) ([]Sample, error) {
	ctx, span := tracer.Start(ctx, "Metadata")
	defer span.End()

	rows, err := outbreakapi.MultiSearch[Sample](
		ctx, c.api, metadataEndpoint, "sra_accession", accessions(samples),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sample metadata")
		return nil, err
	}
	for i := range rows {
		if rows[i].ViralLoad != nil && *rows[i].ViralLoad == -1 {
			rows[i].ViralLoad = nil
		}
	}

	return join(samples, rows,
		func(r Sample) string { return r.Accession },
		func(_ Sample, r Sample) Sample { return r },
	), nil
}

// SampleMutation is a sample's metadata merged with one mutation call.
type SampleMutation struct {
	Sample
	Site      int
	RefBase   string
	AltBase   string
	Frequency float64
	Depth     float64
}

// Mutations adds per-site mutation data to a set of samples.
func (c Client) Mutations(ctx context.Context, samples []Sample) ([]SampleMutation, error) {
	ctx, span := tracer.Start(ctx, "Mutations")
	defer span.End()

	rows, err := outbreakapi.MultiSearch[MutationFrequency](
		ctx, c.api, variantsEndpoint, "sra_accession", accessions(samples),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sample mutations")
		return nil, err
	}

	return join(samples, rows,
		func(r MutationFrequency) string { return r.Accession },
		func(s Sample, r MutationFrequency) SampleMutation {
			return SampleMutation{
				Sample:    s,
				Site:      r.Site,
				RefBase:   r.RefBase,
				AltBase:   r.AltBase,
				Frequency: r.Frequency,
				Depth:     r.Depth,
			}
		},
	), nil
}

// SampleLineage is a sample's metadata merged with one demixed lineage
// abundance.
type SampleLineage struct {
	Sample
	Name      string
	Abundance float64
	Crumbs    string
}

// Lineages adds demixed lineage abundances to a set of samples.
func (c Client) Lineages(ctx context.Context, samples []Sample) ([]SampleLineage, error) {
	ctx, span := tracer.Start(ctx, "Lineages")
	defer span.End()

	rows, err := outbreakapi.MultiSearch[LineageAbundance](
		ctx, c.api, demixEndpoint, "sra_accession", accessions(samples),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sample lineages")
		return nil, err
	}

	return join(samples, rows,
		func(r LineageAbundance) string { return r.Accession },
		func(s Sample, r LineageAbundance) SampleLineage {
			return SampleLineage{
				Sample:    s,
				Name:      r.Name,
				Abundance: r.Abundance,
				Crumbs:    r.Crumbs,
			}
		},
	), nil
}
