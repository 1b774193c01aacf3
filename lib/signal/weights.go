package signal

import (
	"time"

	"outbreakinfo/lib/wastewater"
)

// fallback normalized load when a site never reported one
const defaultNormedViralLoad = 0.5

// SampleWeights derives per-sample aggregation weights from catchment
// populations. With loaded set, each weight is additionally scaled by
// the sample's normalized viral load, turning prevalence aggregates
// into load-weighted ones.
func SampleWeights(samples []wastewater.Sample, loaded bool) []float64 {
	weights := make([]float64, len(samples))
	for i, s := range samples {
		w := float64(wastewater.DefaultPopulation)
		if s.Population != nil {
			w = *s.Population
		}
		if loaded {
			load := defaultNormedViralLoad
			if s.NormedViralLoad != nil {
				load = *s.NormedViralLoad
			}
			w *= load
		}
		weights[i] = w
	}
	return weights
}

// LineageObservations turns demixed sample lineages into long-form
// observations keyed by collection date.
func LineageObservations(rows []wastewater.SampleLineage) []Observation {
	obs := make([]Observation, len(rows))
	for i, r := range rows {
		obs[i] = Observation{
			Date:     r.CollectionDate.Time,
			Category: r.Name,
			Value:    r.Abundance,
		}
	}
	return obs
}

// FirstDate reports the earliest date per category.
func FirstDate(obs []Observation) map[string]time.Time {
	first := make(map[string]time.Time)
	for _, o := range obs {
		cur, ok := first[o.Category]
		if !ok || o.Date.Before(cur) {
			first[o.Category] = o.Date
		}
	}
	return first
}
