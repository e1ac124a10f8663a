package index

import (
	"encoding/json"
	"slices"
	"testing"
)

func sample() *Index {
	return New(
		Gem{Name: "zeitwerk", Entries: []Entry{{Name: "zeitwerk", Version: "2.6.0", Dependencies: map[string]string{}}}},
		Gem{Name: "Ascii85", Entries: []Entry{
			{Name: "Ascii85", Version: "1.0.0", Dependencies: map[string]string{}},
			{Name: "Ascii85", Version: "2.0.0", Dependencies: map[string]string{"rake": ">= 0.0.0"}},
		}},
	)
}

func TestIndexRoundTripKeepsOrder(t *testing.T) {
	data, err := sample().MarshalJSON()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got Index
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if names := got.Names(); !slices.Equal(names, []string{"zeitwerk", "Ascii85"}) {
		t.Errorf("Names() = %v", names)
	}
	if got.EntryCount() != 3 {
		t.Errorf("EntryCount() = %d, want 3", got.EntryCount())
	}
	if e, ok := got.Version("Ascii85", "2.0.0"); !ok || e.Dependencies["rake"] != ">= 0.0.0" {
		t.Errorf("Version() = %+v, %v", e, ok)
	}
}

func TestIndexUnmarshalErrors(t *testing.T) {
	for _, in := range []string{`[]`, `{"a": {}}`, `{"a": [}`, ``} {
		var idx Index
		if err := json.Unmarshal([]byte(in), &idx); err == nil {
			t.Errorf("Unmarshal(%q) should fail", in)
		}
	}
}

func TestIndexUnmarshalFillsDependencies(t *testing.T) {
	var idx Index
	if err := json.Unmarshal([]byte(`{"a":[{"name":"a","version":"1.0.0"}]}`), &idx); err != nil {
		t.Fatal(err)
	}
	g, _ := idx.Lookup("a")
	if g.Entries[0].Dependencies == nil {
		t.Error("missing dependencies should decode as an empty map")
	}
}

func TestIndexLookupAndFind(t *testing.T) {
	idx := sample()

	if _, ok := idx.Lookup("ascii85"); ok {
		t.Error("Lookup should be case-sensitive")
	}
	g, ok := idx.Find("ascii85")
	if !ok || g.Name != "Ascii85" {
		t.Errorf("Find() = %v, %v", g.Name, ok)
	}
	if _, ok := idx.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}

	latest, ok := g.Latest()
	if !ok || latest.Version != "2.0.0" {
		t.Errorf("Latest() = %+v", latest)
	}
	if _, ok := (Gem{}).Latest(); ok {
		t.Error("Latest() of empty gem should fail")
	}
	if _, ok := idx.Version("Ascii85", "9.9.9"); ok {
		t.Error("Version() of unknown version should fail")
	}
}

func TestNewReplacesRepeatedName(t *testing.T) {
	idx := New(
		Gem{Name: "a", Entries: []Entry{{Version: "1.0.0"}}},
		Gem{Name: "b"},
		Gem{Name: "a", Entries: []Entry{{Version: "2.0.0"}}},
	)
	if !slices.Equal(idx.Names(), []string{"a", "b"}) {
		t.Errorf("Names() = %v", idx.Names())
	}
	g, _ := idx.Lookup("a")
	if g.Entries[0].Version != "2.0.0" {
		t.Errorf("repeated name should replace entries, got %+v", g.Entries)
	}
	b, _ := idx.Lookup("b")
	if b.Entries == nil {
		t.Error("nil entries should become empty")
	}
}
