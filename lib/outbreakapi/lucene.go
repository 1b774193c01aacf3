package outbreakapi

import (
	"fmt"
	"strings"
)

// helpers for building the lucene query strings the API's `q` parameter
// expects

func OrJoin(terms []string) string {
	return strings.Join(terms, " OR ")
}

func AndJoin(terms []string) string {
	return strings.Join(terms, " AND ")
}

// Crumbs matches a lineage or any of its descendants against a
// breadcrumbs field (";"-delimited ancestry paths).
func Crumbs(field, lineage string) string {
	return fmt.Sprintf("%s:*;%s;*", field, lineage)
}

func BoolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
