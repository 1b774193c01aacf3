// Package signal gathers irregular per-sample observations into regular
// date-binned signals, the shape needed for prevalence timelines and
// river plots.
package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Observation is one long-form data point: a value for a category
// (usually a lineage) on a date.
type Observation struct {
	Date     time.Time
	Category string
	Value    float64
}

// Bin is a (Start, End] date interval.
type Bin struct {
	Start time.Time
	End   time.Time
}

func (b Bin) Contains(t time.Time) bool {
	return t.After(b.Start) && !t.After(b.End)
}

// Frame is a wide-form signal: one row per date bin, one column per
// category. Cells with no observations are NaN.
type Frame struct {
	Bins       []Bin
	Categories []string
	Values     [][]float64
}

func (f *Frame) Column(category string) ([]float64, bool) {
	for j, c := range f.Categories {
		if c != category {
			continue
		}
		col := make([]float64, len(f.Bins))
		for i := range f.Bins {
			col[i] = f.Values[i][j]
		}
		return col, true
	}
	return nil, false
}

const DefaultBinSize = 7 * 24 * time.Hour

type Options struct {
	// length of each date bin, defaults to DefaultBinSize
	BinSize time.Duration
	// aggregate the whole date range into a single bin
	WholeRange bool
	// date range, defaults to the observation range; it is padded by a
	// day on both ends so boundary samples always land in a bin
	Start time.Time
	End   time.Time
	// per-observation weights aligned with the input, nil weighs every
	// observation equally
	Weights []float64
	// divide each bin by its total across categories so a bin sums
	// to 1, otherwise cells hold the weighted mean of their
	// observations
	Normalize bool
}

// DatebinAndAgg gathers observations into date bins and aggregates each
// (bin, category) cell. Category names are collapsed on a "-like" suffix
// ("XBB.1-like" counts toward "XBB.1") with collapsed columns summed.
func DatebinAndAgg(obs []Observation, opts Options) (*Frame, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations to aggregate")
	}
	if opts.Weights != nil && len(opts.Weights) != len(obs) {
		return nil, fmt.Errorf(
			"got %d weights for %d observations",
			len(opts.Weights), len(obs),
		)
	}

	start, end := opts.Start, opts.End
	if start.IsZero() || end.IsZero() {
		min, max := obs[0].Date, obs[0].Date
		for _, o := range obs[1:] {
			if o.Date.Before(min) {
				min = o.Date
			}
			if o.Date.After(max) {
				max = o.Date
			}
		}
		if start.IsZero() {
			start = min
		}
		if end.IsZero() {
			end = max
		}
	}
	start = start.Add(-24 * time.Hour)
	end = end.Add(24 * time.Hour)

	var bins []Bin
	if opts.WholeRange {
		bins = []Bin{{Start: start, End: end}}
	} else {
		size := opts.BinSize
		if size <= 0 {
			size = DefaultBinSize
		}
		for t := start; !t.Add(size).After(end); t = t.Add(size) {
			bins = append(bins, Bin{Start: t, End: t.Add(size)})
		}
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("date range is shorter than a single bin")
	}

	rawIndex := map[string]int{}
	var rawNames []string
	for _, o := range obs {
		if _, ok := rawIndex[o.Category]; !ok {
			rawIndex[o.Category] = len(rawNames)
			rawNames = append(rawNames, o.Category)
		}
	}

	sums := newMatrix(len(bins), len(rawNames))
	weightSums := newMatrix(len(bins), len(rawNames))
	binTotals := make([]float64, len(bins))
	seen := make([][]bool, len(bins))
	for i := range seen {
		seen[i] = make([]bool, len(rawNames))
	}

	for k, o := range obs {
		i, ok := binIndex(bins, o.Date)
		if !ok {
			continue
		}
		weight := 1.0
		if opts.Weights != nil {
			weight = opts.Weights[k]
		}
		j := rawIndex[o.Category]

		sums[i][j] += o.Value * weight
		weightSums[i][j] += weight
		binTotals[i] += o.Value * weight
		seen[i][j] = true
	}

	rawValues := newMatrix(len(bins), len(rawNames))
	for i := range bins {
		for j := range rawNames {
			if !seen[i][j] {
				rawValues[i][j] = math.NaN()
				continue
			}
			if opts.Normalize {
				rawValues[i][j] = sums[i][j] / binTotals[i]
			} else {
				rawValues[i][j] = sums[i][j] / weightSums[i][j]
			}
		}
	}

	// "-like" columns merge only after each raw column has been divided
	// out, so a merged column is the sum of its columns' aggregates, not
	// a pooled aggregate over their observations
	categories := map[string]int{}
	var names []string
	for _, raw := range rawNames {
		name := collapseCategory(raw)
		if _, ok := categories[name]; !ok {
			categories[name] = 0
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for j, name := range names {
		categories[name] = j
	}

	values := newMatrix(len(bins), len(names))
	for i := range bins {
		for j := range names {
			values[i][j] = math.NaN()
		}
		for k, raw := range rawNames {
			cell := rawValues[i][k]
			if math.IsNaN(cell) {
				continue
			}
			j := categories[collapseCategory(raw)]
			if math.IsNaN(values[i][j]) {
				values[i][j] = cell
			} else {
				values[i][j] += cell
			}
		}
	}

	return &Frame{
		Bins:       bins,
		Categories: names,
		Values:     values,
	}, nil
}

// collapseCategory folds engineered "-like" designations into their base
// lineage.
func collapseCategory(name string) string {
	base, _, _ := strings.Cut(name, "-like")
	return base
}

func binIndex(bins []Bin, t time.Time) (int, bool) {
	// bins are contiguous and sorted
	i := sort.Search(len(bins), func(i int) bool {
		return !bins[i].End.Before(t)
	})
	if i < len(bins) && bins[i].Contains(t) {
		return i, true
	}
	return 0, false
}

func newMatrix(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
