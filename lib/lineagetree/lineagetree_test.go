package lineagetree

import (
	"math"
	"path/filepath"
	"testing"

	"outbreakinfo/lib/signal"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const fixture = `
- name: B.1.1.529
  alias: B.1.1.529
  children:
  - BA.2
  - BA.5
  - XBB.1.5
- name: BA.2
  alias: B.1.1.529.2
  parent: B.1.1.529
  children:
  - XBB.1.5
- name: BA.5
  alias: B.1.1.529.5
  parent: B.1.1.529
- name: XBB.1.5
  alias: XBB.1.5
  parent: BA.2
`

func testTree(t testing.TB) *Node {
	tree, err := Parse([]byte(fixture))
	require.NoError(t, err)
	return tree
}

func TestParse(t *testing.T) {
	tree := testTree(t)

	require.Equal(t, "*", tree.Name)
	require.Len(t, tree.Children, 1)

	root := tree.Children[0]
	require.Equal(t, "B.1.1.529", root.Name)
	require.Equal(t, "*", root.Parent)

	// XBB.1.5 records BA.2 as its parent, so the duplicate edge under
	// B.1.1.529 is dropped
	names := []string{}
	for _, child := range root.Children {
		names = append(names, child.Name)
	}
	require.Equal(t, []string{"BA.2", "BA.5"}, names)

	key := Key(tree)
	require.Len(t, key, 5)
	require.Equal(t, "BA.2", key["XBB.1.5"].Parent)

	// lindex ranks names among sorted names including the root
	require.Equal(t, 0, key["*"].Lindex)
	require.Equal(t, 1, key["B.1.1.529"].Lindex)
	require.Equal(t, 4, key["XBB.1.5"].Lindex)

	_, err := Parse([]byte("not: [valid"))
	require.Error(t, err)
	_, err = Parse([]byte("[]"))
	require.Error(t, err)
}

func TestCompressedRoundtrip(t *testing.T) {
	tree := testTree(t)
	path := filepath.Join(t.TempDir(), "tree.json.gz")

	require.NoError(t, WriteCompressed(tree, path))
	loaded, err := ReadCompressed(path)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(tree, loaded))

	_, err = ReadCompressed(filepath.Join(t.TempDir(), "missing.json.gz"))
	require.Error(t, err)
}

func TestAggPrevalence(t *testing.T) {
	key := Key(testTree(t))
	row := map[string]float64{
		"BA.2":    0.1,
		"BA.5":    0.2,
		"XBB.1.5": 0.3,
	}

	require.InDelta(t, 0.4, AggPrevalence(key["BA.2"], row, nil), 1e-9)
	require.InDelta(t, 0.6, AggPrevalence(key["B.1.1.529"], row, nil), 1e-9)

	// a clade rooted elsewhere keeps its own share
	exclude := map[string]struct{}{"XBB.1.5": {}}
	require.InDelta(t, 0.1, AggPrevalence(key["BA.2"], row, exclude), 1e-9)
}

func TestClusterFrame(t *testing.T) {
	tree := testTree(t)
	key := Key(tree)

	frame := &signal.Frame{
		Bins: make([]signal.Bin, 3),
		Categories: []string{
			"BA.2", "BA.5", "XBB.1.5",
		},
		Values: [][]float64{
			{0.1, 0.2, 0.6},
			{0.05, 0.1, 0.1},
			{0.2, 0.2, 0.6},
		},
	}

	clustered, clusters := ClusterFrame(
		frame,
		[]*Node{key["XBB.1.5"]},
		[]*Node{tree, key["BA.2"]},
	)

	// ordered by alias: * < B.1.1.529.2 < XBB.1.5
	require.Equal(t, []string{
		"other **",
		"other B.1.1.529.2* (BA.2)",
		"XBB.1.5*",
	}, clustered.Categories)
	require.True(t, clusters[0].Root == tree)
	require.False(t, clusters[0].Inclusive)
	require.True(t, clusters[2].Inclusive)

	// row 0: BA.2 clade keeps 0.1 (XBB.1.5 is its own cluster),
	// remainder absorbs what no cluster claimed
	require.InDelta(t, 0.1, clustered.Values[0][1], 1e-9)
	require.InDelta(t, 0.6, clustered.Values[0][2], 1e-9)
	require.InDelta(t, 0.3, clustered.Values[0][0], 1e-9)

	// row 1 sums far below 0.5, treated as unsampled
	for _, v := range clustered.Values[1] {
		require.True(t, math.IsNaN(v))
	}

	// row 2 already sums to 1, the remainder keeps its own share
	require.InDelta(t, 0.2, clustered.Values[2][1], 1e-9)
	require.InDelta(t, 0.2, clustered.Values[2][0], 1e-9)
}

func TestColors(t *testing.T) {
	key := Key(testTree(t))

	colors, err := Colors([]string{"B.1.1.529", "BA.5", "XBB.1.5"}, []bool{false, false, true}, key)
	require.NoError(t, err)
	require.Len(t, colors, 3)

	// hues span [0, 0.75] in alias-rank order
	require.InDelta(t, 0, colors[0].H, 1e-9)
	require.InDelta(t, 0.75, colors[2].H, 1e-9)
	require.Greater(t, colors[2].H, colors[1].H)
	require.Greater(t, colors[1].H, colors[0].H)

	require.InDelta(t, 0.55, colors[0].V, 1e-9)
	require.InDelta(t, 0.8, colors[2].V, 1e-9)

	_, err = Colors([]string{"nope"}, nil, key)
	require.Error(t, err)
	_, err = Colors([]string{"BA.5"}, []bool{true, false}, key)
	require.Error(t, err)
}

func TestSuggest(t *testing.T) {
	key := Key(testTree(t))

	suggestions := Suggest("XBB.15", key, 2)
	require.Len(t, suggestions, 2)
	require.Equal(t, "XBB.1.5", suggestions[0].Name)

	// alias matches surface the canonical name
	suggestions = Suggest("B.1.1.529.5", key, 1)
	require.Equal(t, "BA.5", suggestions[0].Name)
}
