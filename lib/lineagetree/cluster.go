package lineagetree

import (
	"math"
	"sort"

	"outbreakinfo/lib/signal"
)

// AggPrevalence sums a clade's prevalence from a per-lineage row. Sub-
// clades whose root appears in exclude are skipped: when clades are drawn
// side by side each keeps only the part of the tree not claimed by
// another. Lineages absent from the row count as zero.
func AggPrevalence(node *Node, row map[string]float64, exclude map[string]struct{}) float64 {
	total := row[node.Name]
	for _, child := range node.Children {
		if _, ok := exclude[child.Name]; ok {
			continue
		}
		total += AggPrevalence(child, row, exclude)
	}
	return total
}

// Cluster describes one aggregated column of a clustered frame.
type Cluster struct {
	// display label: "ALIAS*" for an inclusive clade, "other ALIAS*"
	// for a residual one, with the unaliased name in parentheses when
	// they differ
	Label string
	Root  *Node
	// inclusive clades own their whole remaining subtree; residual
	// clades hold what their subtree's inclusive children left behind
	Inclusive bool
}

func label(node *Node, inclusive bool) string {
	label := node.Alias + "*"
	if !inclusive {
		label = "other " + label
	}
	if node.Name != node.Alias {
		label += " (" + node.Name + ")"
	}
	return label
}

// ClusterFrame aggregates a per-lineage prevalence frame into clade
// columns, ordered by alias. Bins whose aggregate sums below 0.5 are
// considered unsampled and come back as missing; otherwise the residual
// root column ("other **", when present) absorbs the remainder up to 1.
func ClusterFrame(frame *signal.Frame, inclusive, residual []*Node) (*signal.Frame, []Cluster) {
	clusters := make([]Cluster, 0, len(inclusive)+len(residual))
	for _, node := range inclusive {
		clusters = append(clusters, Cluster{
			Label:     label(node, true),
			Root:      node,
			Inclusive: true,
		})
	}
	for _, node := range residual {
		clusters = append(clusters, Cluster{
			Label:     label(node, false),
			Root:      node,
			Inclusive: false,
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Root.Alias < clusters[j].Root.Alias
	})

	exclude := make(map[string]struct{}, len(clusters))
	for _, c := range clusters {
		exclude[c.Root.Name] = struct{}{}
	}

	remainder := -1
	labels := make([]string, len(clusters))
	for j, c := range clusters {
		labels[j] = c.Label
		if !c.Inclusive && c.Root.Name == "*" {
			remainder = j
		}
	}

	values := make([][]float64, len(frame.Bins))
	for i := range frame.Bins {
		row := make(map[string]float64, len(frame.Categories))
		for k, name := range frame.Categories {
			if v := frame.Values[i][k]; !math.IsNaN(v) {
				row[name] = v
			}
		}

		cells := make([]float64, len(clusters))
		sum := 0.0
		for j, c := range clusters {
			cells[j] = AggPrevalence(c.Root, row, exclude)
			sum += cells[j]
		}

		if sum < 0.5 {
			for j := range cells {
				cells[j] = math.NaN()
			}
		} else if remainder >= 0 {
			cells[remainder] = math.Max(0, math.Min(1, cells[remainder]+1-sum))
		}
		values[i] = cells
	}

	return &signal.Frame{
		Bins:       frame.Bins,
		Categories: labels,
		Values:     values,
	}, clusters
}
