// Package io reads and writes gem indexes.
//
// # JSON Format
//
// An index is a JSON object mapping gem names to arrays of entries, keys in
// case-insensitive order and entries in semver order:
//
//	{
//	  "a": [
//	    {"name": "a", "version": "1.0.0", "dependencies": {"b": ">= 1.0.0"}}
//	  ],
//	  "b": [
//	    {"name": "b", "version": "2.0.0", "dependencies": {}}
//	  ]
//	}
//
// Use [WriteJSON]/[ExportJSON] to write an index and [ReadJSON]/[ImportJSON]
// to read one back with its key order intact. [DatedPath] derives
// date-stamped file names such as "rubygems-2026-10-15.json".
//
// # Sinks
//
// [NewSink] picks a destination from a string: a MongoDB URI yields a
// [MongoSink] that upserts one document per gem, anything else a [FileSink].
// [Load] is the reading counterpart used by the serve, show and graph
// commands.
package io
