package lineagetree

import (
	"fmt"
	"sort"
)

// HSV is a hue/saturation/value color, each channel in [0, 1].
type HSV struct {
	H float64
	S float64
	V float64
}

// Colors assigns a color to each lineage so that phylogenetically
// distant lineages land far apart on the hue wheel. The hue is the
// squared rank of the lineage's alias among all aliases in the key,
// normalized and scaled to 0.75 so the wheel does not wrap. brighten
// lifts the value channel of the matching lineages, nil leaves all dim.
func Colors(lineages []string, brighten []bool, key map[string]*Node) ([]HSV, error) {
	if brighten != nil && len(brighten) != len(lineages) {
		return nil, fmt.Errorf(
			"got %d brighten flags for %d lineages",
			len(brighten), len(lineages),
		)
	}

	aliases := make([]string, 0, len(key))
	for _, node := range key {
		aliases = append(aliases, node.Alias)
	}
	sort.Strings(aliases)

	ranks := make([]float64, len(lineages))
	min, max := 0.0, 0.0
	for i, name := range lineages {
		node, ok := key[name]
		if !ok {
			return nil, fmt.Errorf("unknown lineage %q", name)
		}
		rank := float64(sort.SearchStrings(aliases, node.Alias))
		ranks[i] = rank * rank
		if i == 0 || ranks[i] < min {
			min = ranks[i]
		}
		if i == 0 || ranks[i] > max {
			max = ranks[i]
		}
	}

	colors := make([]HSV, len(lineages))
	for i, rank := range ranks {
		hue := 0.0
		if max > min {
			hue = (rank - min) / (max - min) * 0.75
		}
		value := 0.55
		if brighten != nil && brighten[i] {
			value += 0.25
		}
		colors[i] = HSV{H: hue, S: 1, V: value}
	}
	return colors, nil
}
