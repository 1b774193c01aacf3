package lineagetree

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Suggestion pairs a known lineage name with its similarity to the
// queried one.
type Suggestion struct {
	Name       string
	Similarity float64
}

// Suggest returns the n known lineage names closest to name, most
// similar first. Aliases are matched too but suggestions always carry
// the canonical name.
func Suggest(name string, key map[string]*Node, n int) []Suggestion {
	name = strings.ToUpper(name)

	suggestions := make([]Suggestion, 0, len(key))
	for _, node := range key {
		similarity := matchr.JaroWinkler(name, strings.ToUpper(node.Name), false)
		if node.Alias != node.Name {
			aliased := matchr.JaroWinkler(name, strings.ToUpper(node.Alias), false)
			if aliased > similarity {
				similarity = aliased
			}
		}
		suggestions = append(suggestions, Suggestion{
			Name:       node.Name,
			Similarity: similarity,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Similarity != suggestions[j].Similarity {
			return suggestions[i].Similarity > suggestions[j].Similarity
		}
		return suggestions[i].Name < suggestions[j].Name
	})
	if n > 0 && n < len(suggestions) {
		suggestions = suggestions[:n]
	}
	return suggestions
}
