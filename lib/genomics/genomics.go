// Package genomics wraps the SARS-CoV-2 genomics endpoints of the
// outbreak.info API: lineage prevalence, mutation prevalence, sequence
// counts, case counts and location/lineage/mutation lookups.
package genomics

import (
	"net/url"
	"sort"
	"strings"

	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("genomics")

type Client struct {
	api *outbreakapi.Client
}

func NewClient(api *outbreakapi.Client) Client {
	return Client{api: api}
}

// lineageParams selects lineages either by exact name or, when ancestors
// is set, by the whole clade below the first lineage (breadcrumbs match).
func lineageParams(params url.Values, lineages []string, ancestors bool) {
	if ancestors && len(lineages) > 0 {
		params.Set("lineages", "None")
		params.Set("q", outbreakapi.Crumbs("pangolin_lineage_crumbs", lineages[0]))
		return
	}
	params.Set("pangolin_lineage", strings.Join(lineages, ","))
}

// flattenResults flattens a multi-query response (query string -> rows)
// into a single row list, tagging each row with the query it came from.
// Queries are visited in sorted order so output is deterministic.
func flattenResults[T any](byQuery map[string][]T, tag func(*T, string)) []T {
	queries := make([]string, 0, len(byQuery))
	for q := range byQuery {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	var rows []T
	for _, q := range queries {
		for _, row := range byQuery[q] {
			tag(&row, q)
			rows = append(rows, row)
		}
	}
	return rows
}
