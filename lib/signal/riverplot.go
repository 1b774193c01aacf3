package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultBaselineIterations bounds the randomized descent in
// RiverplotBaseline.
const DefaultBaselineIterations = 1000

// RiverplotBaseline computes a per-bin vertical offset for a stacked
// river plot of the frame, scaled by the viral load series, so that the
// stream boundaries shear as little as possible between adjacent bins.
// loads is aligned with frame.Bins and may contain NaN; the returned
// offsets cover every bin, interpolated across rows that were skipped.
//
// The offsets are found by randomized descent: a shrinking Gaussian
// perturbation is applied each iteration and kept only when it lowers
// the total shear.
func RiverplotBaseline(frame *Frame, loads []float64, iterations int, rng *rand.Rand) ([]float64, error) {
	if len(loads) != len(frame.Bins) {
		return nil, fmt.Errorf(
			"got %d loads for %d bins", len(loads), len(frame.Bins),
		)
	}
	if iterations <= 0 {
		iterations = DefaultBaselineIterations
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	loadsInterp := Interpolate(loads)

	// rows usable for the descent: load reported and every category
	// present
	var kept []int
	for i := range frame.Bins {
		if math.IsNaN(loads[i]) || math.IsNaN(loadsInterp[i]) {
			continue
		}
		complete := true
		for _, v := range frame.Values[i] {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, i)
		}
	}
	if len(kept) < 2 {
		return nil, fmt.Errorf("need at least 2 complete bins, have %d", len(kept))
	}

	// cumulative stream heights scaled by interpolated load, and the
	// shear weights scaled by the reported load
	cum := make([][]float64, len(kept))
	weights := make([][]float64, len(kept))
	for i, row := range kept {
		cum[i] = make([]float64, len(frame.Categories))
		weights[i] = make([]float64, len(frame.Categories))
		total := 0.0
		for j, v := range frame.Values[row] {
			scaled := v * loadsInterp[row]
			total += scaled
			cum[i][j] = total
			weights[i][j] = scaled / loads[row]
		}
	}

	shear := func(offsets []float64) float64 {
		total := 0.0
		for i := 1; i < len(kept); i++ {
			for j := range frame.Categories {
				diff := (cum[i][j] + offsets[i]) - (cum[i-1][j] + offsets[i-1])
				total += diff * weights[i][j] * diff * weights[i][j]
			}
		}
		return total
	}

	offsets := make([]float64, len(kept))
	for i, row := range kept {
		offsets[i] = -loads[row] / 2
	}
	best := shear(offsets)

	proposal := make([]float64, len(kept))
	for n := 0; n < iterations; n++ {
		scale := 2 / float64(n+48)
		for i := range proposal {
			proposal[i] = offsets[i] + rng.NormFloat64()*scale
		}
		if s := shear(proposal); s < best {
			copy(offsets, proposal)
			best = s
			// re-center; shear only sees offset differences so this
			// does not change it
			mean := 0.0
			for _, o := range offsets {
				mean += o
			}
			mean /= float64(len(offsets))
			for i := range offsets {
				offsets[i] -= mean
			}
		}
	}

	out := make([]float64, len(frame.Bins))
	for i := range out {
		out[i] = math.NaN()
	}
	for i, row := range kept {
		out[row] = offsets[i]
	}
	return Interpolate(out), nil
}

// Interpolate fills NaN gaps in a series linearly. Leading NaNs are left
// in place, trailing NaNs take the last reported value.
func Interpolate(series []float64) []float64 {
	out := make([]float64, len(series))
	copy(out, series)

	prev := -1
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - out[prev]) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				out[k] = out[prev] + step*float64(k-prev)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for k := prev + 1; k < len(out); k++ {
			out[k] = out[prev]
		}
	}
	return out
}
