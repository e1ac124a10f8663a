package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubygems.json")
	sink, err := NewSink(context.Background(), path, SinkOptions{Pretty: true, DateStamp: true})
	if err != nil {
		t.Fatalf("NewSink() error: %v", err)
	}
	defer sink.Close(context.Background())

	run := RunInfo{ID: uuid.NewString(), StartedAt: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}
	loc, err := sink.Write(context.Background(), sampleIndex(), run)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if filepath.Base(loc) != "rubygems-2026-10-15.json" {
		t.Errorf("location = %s", loc)
	}
	if _, err := os.Stat(loc); err != nil {
		t.Errorf("index file missing: %v", err)
	}

	idx, err := Load(context.Background(), loc)
	if err != nil || idx.Len() != 2 {
		t.Errorf("Load() = %v, %v", idx, err)
	}
}

func TestIsMongoURI(t *testing.T) {
	tests := map[string]bool{
		"mongodb://localhost:27017/gemindex": true,
		"mongodb+srv://cluster.example.com":  true,
		"index/rubygems.json":                false,
		"mongodb.json":                       false,
	}
	for in, want := range tests {
		if got := IsMongoURI(in); got != want {
			t.Errorf("IsMongoURI(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMongoDocumentRoundTrip(t *testing.T) {
	g, _ := sampleIndex().Lookup("a")
	doc := toDocument(g, 3, "run-1", time.Now())

	if doc.Name != "a" || doc.Position != 3 || doc.RunID != "run-1" {
		t.Errorf("document = %+v", doc)
	}
	if deps := doc.Entries[0].Dependencies; len(deps) != 1 || deps[0].Name != "b" {
		t.Errorf("dependencies = %+v", deps)
	}

	back := fromDocument(doc)
	if back.Entries[0].Dependencies["b"] != ">= 1.0.0" || back.Entries[0].Name != "a" {
		t.Errorf("fromDocument() = %+v", back)
	}
}

func TestMongoSink(t *testing.T) {
	uri := os.Getenv("GEMINDEX_MONGO_URI")
	if uri == "" {
		t.Skip("GEMINDEX_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sink, err := NewSink(ctx, uri, SinkOptions{})
	if err != nil {
		t.Fatalf("NewSink() error: %v", err)
	}
	defer sink.Close(ctx)

	if _, err := sink.Write(ctx, sampleIndex(), RunInfo{ID: uuid.NewString()}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	idx, err := Load(ctx, uri)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if names := idx.Names(); len(names) != 2 || names[0] != "a" {
		t.Errorf("Names() = %v", names)
	}
}
