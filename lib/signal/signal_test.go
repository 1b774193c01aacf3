package signal

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/wastewater"

	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	parsed, err := dates.Parse(value)
	require.NoError(t, err)
	return parsed
}

func TestDatebinAndAgg(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5", Value: 0.6},
		{Date: day(t, "2023-01-03"), Category: "BQ.1", Value: 0.2},
		{Date: day(t, "2023-01-10"), Category: "XBB.1.5", Value: 0.8},
	}

	frame, err := DatebinAndAgg(obs, Options{Normalize: true})
	require.NoError(t, err)

	// padded range 2023-01-01 .. 2023-01-11 fits one full week
	require.Len(t, frame.Bins, 1)
	require.Equal(t, []string{"BQ.1", "XBB.1.5"}, frame.Categories)
	require.InDelta(t, 0.25, frame.Values[0][0], 1e-9)
	require.InDelta(t, 0.75, frame.Values[0][1], 1e-9)
}

func TestDatebinAndAggWeightedMean(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5", Value: 0.2},
		{Date: day(t, "2023-01-03"), Category: "XBB.1.5", Value: 0.8},
		{Date: day(t, "2023-01-03"), Category: "BQ.1", Value: 0.5},
	}

	frame, err := DatebinAndAgg(obs, Options{
		WholeRange: true,
		Weights:    []float64{3, 1, 2},
	})
	require.NoError(t, err)
	require.Len(t, frame.Bins, 1)

	xbb, ok := frame.Column("XBB.1.5")
	require.True(t, ok)
	// weighted mean (0.2*3 + 0.8*1) / 4
	require.InDelta(t, 0.35, xbb[0], 1e-9)

	bq, ok := frame.Column("BQ.1")
	require.True(t, ok)
	require.InDelta(t, 0.5, bq[0], 1e-9)
}

func TestDatebinAndAggCollapsesLikeNames(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5", Value: 0.3},
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5-like", Value: 0.2},
		{Date: day(t, "2023-01-02"), Category: "BQ.1", Value: 0.5},
	}

	frame, err := DatebinAndAgg(obs, Options{WholeRange: true, Normalize: true})
	require.NoError(t, err)
	require.Equal(t, []string{"BQ.1", "XBB.1.5"}, frame.Categories)

	xbb, ok := frame.Column("XBB.1.5")
	require.True(t, ok)
	require.InDelta(t, 0.5, xbb[0], 1e-9)
}

func TestDatebinAndAggCollapseSumsColumnAggregates(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5", Value: 0.2},
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5-like", Value: 0.8},
	}

	frame, err := DatebinAndAgg(obs, Options{
		WholeRange: true,
		Weights:    []float64{3, 1},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"XBB.1.5"}, frame.Categories)

	// each column keeps its own weighted mean (0.2 and 0.8) and the
	// merged column sums them, not the pooled mean (0.6+0.8)/4
	xbb, ok := frame.Column("XBB.1.5")
	require.True(t, ok)
	require.InDelta(t, 1.0, xbb[0], 1e-9)
}

func TestDatebinAndAggMissingCells(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-02"), Category: "XBB.1.5", Value: 0.6},
		{Date: day(t, "2023-01-16"), Category: "BQ.1", Value: 0.4},
	}

	frame, err := DatebinAndAgg(obs, Options{
		Start:     day(t, "2023-01-02"),
		End:       day(t, "2023-01-22"),
		Normalize: true,
	})
	require.NoError(t, err)
	require.Len(t, frame.Bins, 3)

	// week 1 only saw XBB.1.5, week 3 saw nothing
	require.True(t, math.IsNaN(frame.Values[0][0]))
	require.InDelta(t, 1, frame.Values[0][1], 1e-9)
	require.InDelta(t, 1, frame.Values[2][0], 1e-9)
	require.True(t, math.IsNaN(frame.Values[1][0]))
	require.True(t, math.IsNaN(frame.Values[1][1]))
}

func TestDatebinAndAggEmpty(t *testing.T) {
	_, err := DatebinAndAgg(nil, Options{})
	require.Error(t, err)

	_, err = DatebinAndAgg(
		[]Observation{{Date: time.Now(), Category: "a", Value: 1}},
		Options{Weights: []float64{1, 2}},
	)
	require.ErrorContains(t, err, "weights")
}

func TestSampleWeights(t *testing.T) {
	samples := []wastewater.Sample{
		{Population: wastewater.Float(50000), NormedViralLoad: wastewater.Float(0.9)},
		{},
	}

	require.Equal(t, []float64{50000, 1000}, SampleWeights(samples, false))
	require.Equal(t, []float64{45000, 500}, SampleWeights(samples, true))
}

func TestFirstDate(t *testing.T) {
	obs := []Observation{
		{Date: day(t, "2023-01-10"), Category: "site-1"},
		{Date: day(t, "2023-01-05"), Category: "site-1"},
		{Date: day(t, "2023-01-08"), Category: "site-2"},
	}

	first := FirstDate(obs)
	require.Equal(t, day(t, "2023-01-05"), first["site-1"])
	require.Equal(t, day(t, "2023-01-08"), first["site-2"])
}

func TestInterpolate(t *testing.T) {
	nan := math.NaN()
	out := Interpolate([]float64{nan, 1, nan, nan, 4, nan})

	require.True(t, math.IsNaN(out[0]))
	require.Equal(t, []float64{1, 2, 3, 4, 4}, out[1:])
}

func TestRiverplotBaseline(t *testing.T) {
	bins := make([]Bin, 6)
	values := make([][]float64, 6)
	loads := make([]float64, 6)
	start := day(t, "2023-01-01")
	for i := range bins {
		bins[i] = Bin{
			Start: start.AddDate(0, 0, i*7),
			End:   start.AddDate(0, 0, (i+1)*7),
		}
		share := 0.1 + 0.15*float64(i)
		values[i] = []float64{share, 1 - share}
		loads[i] = 100 + 40*float64(i)
	}
	// one unreported load in the middle
	loads[3] = math.NaN()

	frame := &Frame{
		Bins:       bins,
		Categories: []string{"XBB.1.5", "BQ.1"},
		Values:     values,
	}

	rng := rand.New(rand.NewSource(1))
	offsets, err := RiverplotBaseline(frame, loads, 200, rng)
	require.NoError(t, err)
	require.Len(t, offsets, len(bins))
	for _, o := range offsets {
		require.False(t, math.IsNaN(o))
	}

	// offsets stay zero-mean over the bins that took part
	mean := 0.0
	for i, o := range offsets {
		if i == 3 {
			continue
		}
		mean += o
	}
	require.InDelta(t, 0, mean/5, 1e-6)

	_, err = RiverplotBaseline(frame, loads[:3], 10, rng)
	require.Error(t, err)
}

func TestLineageObservations(t *testing.T) {
	rows := []wastewater.SampleLineage{
		{
			Sample: wastewater.Sample{
				Accession:      "SRR1",
				CollectionDate: dates.On(2023, 1, 5),
			},
			Name:      "XBB.1.5",
			Abundance: 0.4,
		},
	}

	obs := LineageObservations(rows)
	require.Len(t, obs, 1)
	require.Equal(t, "XBB.1.5", obs[0].Category)
	require.Equal(t, 0.4, obs[0].Value)
	require.Equal(t, day(t, "2023-01-05"), obs[0].Date)
}
