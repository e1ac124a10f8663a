package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is one normalized release of a gem.
type Entry struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Gem is a gem name with its entries in ascending semver precedence.
type Gem struct {
	Name    string
	Entries []Entry
}

// Latest returns the entry with the highest precedence.
func (g Gem) Latest() (Entry, bool) {
	if len(g.Entries) == 0 {
		return Entry{}, false
	}
	return g.Entries[len(g.Entries)-1], true
}

// Index maps gem names to their entries. Gems keep the order they were added
// in, which for an aggregated index is case-insensitive ascending by name.
//
// An Index is not modified after construction and is safe for concurrent
// reads.
type Index struct {
	gems   []Gem
	byName map[string]int
}

// New builds an Index from gems in the given order. A repeated name replaces
// the earlier gem's entries in place.
func New(gems ...Gem) *Index {
	idx := &Index{byName: make(map[string]int, len(gems))}
	for _, g := range gems {
		idx.add(g)
	}
	return idx
}

func (idx *Index) add(g Gem) {
	if g.Entries == nil {
		g.Entries = []Entry{}
	}
	if i, ok := idx.byName[g.Name]; ok {
		idx.gems[i] = g
		return
	}
	idx.byName[g.Name] = len(idx.gems)
	idx.gems = append(idx.gems, g)
}

// Len returns the number of gems.
func (idx *Index) Len() int { return len(idx.gems) }

// EntryCount returns the total number of entries across all gems.
func (idx *Index) EntryCount() int {
	n := 0
	for _, g := range idx.gems {
		n += len(g.Entries)
	}
	return n
}

// Names returns the gem names in index order.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.gems))
	for i, g := range idx.gems {
		names[i] = g.Name
	}
	return names
}

// Gems returns the gems in index order. The slice must not be modified.
func (idx *Index) Gems() []Gem { return idx.gems }

// Lookup returns the gem with the exact name.
func (idx *Index) Lookup(name string) (Gem, bool) {
	i, ok := idx.byName[name]
	if !ok {
		return Gem{}, false
	}
	return idx.gems[i], true
}

// Find returns the gem matching name case-insensitively when no exact match
// exists. Exact matches win.
func (idx *Index) Find(name string) (Gem, bool) {
	if g, ok := idx.Lookup(name); ok {
		return g, true
	}
	for _, g := range idx.gems {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Gem{}, false
}

// Version returns the entry of name with the given coerced version.
func (idx *Index) Version(name, version string) (Entry, bool) {
	g, ok := idx.Lookup(name)
	if !ok {
		return Entry{}, false
	}
	for _, e := range g.Entries {
		if e.Version == version {
			return e, true
		}
	}
	return Entry{}, false
}

// MarshalJSON encodes the index as a JSON object whose keys follow index
// order. Requirement operators are written verbatim; callers going through
// json.Marshal get them HTML-escaped unless they use an Encoder with
// SetEscapeHTML(false).
func (idx *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, g := range idx.gems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(g.Name); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(g.Entries); err != nil {
			return nil, fmt.Errorf("encode %s: %w", g.Name, err)
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}

// UnmarshalJSON decodes a JSON object of gem name to entries, keeping the
// key order of the document.
func (idx *Index) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("index: expected object, got %v", tok)
	}

	*idx = Index{byName: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("index: expected gem name, got %v", tok)
		}
		var entries []Entry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("index: gem %s: %w", name, err)
		}
		for i := range entries {
			if entries[i].Dependencies == nil {
				entries[i].Dependencies = map[string]string{}
			}
		}
		idx.add(Gem{Name: name, Entries: entries})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
