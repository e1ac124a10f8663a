package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gemindex/pkg/index"
)

// ReadJSON decodes an index from r, keeping the key order of the document.
//
// The input must be a JSON object mapping gem names to arrays of entries:
//
//	{
//	  "a": [{"name": "a", "version": "1.0.0", "dependencies": {"b": ">= 1.0.0"}}],
//	  "b": [{"name": "b", "version": "2.0.0", "dependencies": {}}]
//	}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*index.Index, error) {
	var idx index.Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &idx, nil
}

// ImportJSON reads the index file at path.
func ImportJSON(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	idx, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}
