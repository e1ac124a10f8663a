package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/gemindex/pkg/index"
)

// WriteJSON encodes idx as JSON and writes it to w. Pretty output uses a
// two-space indent; otherwise the object is written on a single line. Gem
// names keep index order and requirement operators are not HTML-escaped.
func WriteJSON(idx *index.Index, w io.Writer, pretty bool) error {
	data, err := idx.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("indent: %w", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ExportJSON writes idx to a JSON file at path, creating parent directories.
// The file is written to a temporary sibling and renamed into place.
func ExportJSON(idx *index.Index, path string, pretty bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteJSON(idx, tmp, pretty); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DatedPath inserts the date of t before the extension of path:
// "index/rubygems.json" becomes "index/rubygems-2026-10-15.json".
func DatedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + t.Format(time.DateOnly) + ext
}
