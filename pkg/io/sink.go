package io

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/gemindex/pkg/index"
)

// RunInfo describes the build that produced an index.
type RunInfo struct {
	ID        string    // Unique run identifier
	StartedAt time.Time // Start of the build
}

// Sink is a destination for a finished index.
type Sink interface {
	// Write stores idx. It returns a human-readable location on success.
	Write(ctx context.Context, idx *index.Index, run RunInfo) (string, error)
	// Close releases resources held by the sink.
	Close(ctx context.Context) error
}

// SinkOptions configures file sinks.
type SinkOptions struct {
	Pretty    bool // Indent JSON output
	DateStamp bool // Insert the run date into the file name
}

// NewSink returns a sink for dest: a MongoDB sink for "mongodb://" and
// "mongodb+srv://" URIs, a JSON file sink for anything else.
func NewSink(ctx context.Context, dest string, opts SinkOptions) (Sink, error) {
	if IsMongoURI(dest) {
		return NewMongoSink(ctx, dest)
	}
	return &FileSink{Path: dest, Pretty: opts.Pretty, DateStamp: opts.DateStamp}, nil
}

// Load reads an index from src, which is either a file path or a MongoDB URI.
func Load(ctx context.Context, src string) (*index.Index, error) {
	if IsMongoURI(src) {
		return LoadMongo(ctx, src)
	}
	return ImportJSON(src)
}

// IsMongoURI reports whether s names a MongoDB deployment.
func IsMongoURI(s string) bool {
	return strings.HasPrefix(s, "mongodb://") || strings.HasPrefix(s, "mongodb+srv://")
}

// FileSink writes the index as a JSON file.
type FileSink struct {
	Path      string
	Pretty    bool
	DateStamp bool
}

// Write implements Sink.
func (s *FileSink) Write(_ context.Context, idx *index.Index, run RunInfo) (string, error) {
	path := s.Path
	if s.DateStamp {
		t := run.StartedAt
		if t.IsZero() {
			t = time.Now()
		}
		path = DatedPath(path, t)
	}
	if err := ExportJSON(idx, path, s.Pretty); err != nil {
		return "", err
	}
	return path, nil
}

// Close implements Sink.
func (s *FileSink) Close(context.Context) error { return nil }
