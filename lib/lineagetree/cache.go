package lineagetree

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
)

// WriteCompressed caches the tree to a gzipped json file so later runs
// can skip the download.
func WriteCompressed(tree *Node, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write lineage tree: %w", err)
	}
	defer file.Close()

	writer := gzip.NewWriter(file)
	if err := json.NewEncoder(writer).Encode(tree); err != nil {
		return fmt.Errorf("write lineage tree: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write lineage tree: %w", err)
	}
	return file.Close()
}

// ReadCompressed loads a tree cached by WriteCompressed.
func ReadCompressed(path string) (*Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read lineage tree: %w", err)
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read lineage tree: %w", err)
	}
	defer reader.Close()

	tree := &Node{}
	if err := json.NewDecoder(reader).Decode(tree); err != nil {
		return nil, fmt.Errorf("read lineage tree: %w", err)
	}
	return tree, nil
}
