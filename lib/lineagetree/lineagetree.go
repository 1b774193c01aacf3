// Package lineagetree downloads and works with the curated Pango
// lineage tree published by outbreak.info: phylogenetic clade
// aggregation, divergence-based coloring and lineage name suggestion.
package lineagetree

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"outbreakinfo/lib/telemetry"
)

var tracer = otel.Tracer("lineagetree")

// DefaultURL is the curated lineages.yml maintained alongside the
// outbreak.info frontend.
const DefaultURL = "https://raw.githubusercontent.com/outbreak-info/outbreak.info/master/curated_reports_prep/lineages.yml"

// Node is a lineage in the phylogenetic tree. The root is the synthetic
// lineage "*" covering everything.
type Node struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	// rank of Name among all lineage names, a stable small integer id
	Lindex   int     `json:"lindex"`
	Parent   string  `json:"parent"`
	Children []*Node `json:"children"`
}

type record struct {
	Name     string   `yaml:"name"`
	Alias    string   `yaml:"alias"`
	Parent   string   `yaml:"parent"`
	Children []string `yaml:"children"`
}

// Fetch downloads and parses a lineages.yml file. An empty url means
// DefaultURL.
func Fetch(ctx context.Context, url string) (*Node, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	if url == "" {
		url = DefaultURL
	}

	client := resty.New().SetTimeout(time.Minute)
	telemetry.InstrumentResty(client, "lineagetree/http")

	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch lineage tree")
		return nil, err
	}
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("fetch lineage tree: status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tree, err := Parse(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse lineage tree")
		return nil, err
	}
	return tree, nil
}

// Parse builds the tree from lineages.yml contents. Entries without a
// recorded parent become children of the "*" root, and a child edge is
// only kept when the child names the node as its parent.
func Parse(data []byte) (*Node, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse lineages.yml: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse lineages.yml: no lineages")
	}

	names := make([]string, 0, len(records)+1)
	names = append(names, "*")
	for _, r := range records {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	lindex := make(map[string]int, len(names))
	for i, name := range names {
		lindex[name] = i
	}

	childRecords := make(map[string]record, len(records))
	for _, r := range records {
		if r.Parent != "" {
			childRecords[r.Name] = r
		}
	}

	var build func(r record) *Node
	build = func(r record) *Node {
		node := &Node{
			Name:   r.Name,
			Alias:  r.Alias,
			Lindex: lindex[r.Name],
			Parent: r.Parent,
		}
		for _, name := range r.Children {
			child, ok := childRecords[name]
			if !ok || child.Parent != r.Name {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	root := &Node{
		Name:   "*",
		Alias:  "*",
		Lindex: lindex["*"],
		Parent: "*",
	}
	for _, r := range records {
		if r.Parent != "" {
			continue
		}
		r.Parent = "*"
		root.Children = append(root.Children, build(r))
	}
	return root, nil
}

// Key indexes the tree by lineage name.
func Key(tree *Node) map[string]*Node {
	key := make(map[string]*Node)
	var walk func(node *Node)
	walk = func(node *Node) {
		key[node.Name] = node
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(tree)
	return key
}
