package io

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/matzehuels/gemindex/pkg/index"
)

const (
	defaultMongoDatabase   = "gemindex"
	defaultMongoCollection = "gems"
	mongoBatchSize         = 500
)

// gemDocument is the stored form of one gem. Dependencies are stored as an
// array because gem names may contain characters MongoDB treats specially in
// field names.
type gemDocument struct {
	Name      string          `bson:"_id"`
	Position  int             `bson:"position"`
	Entries   []entryDocument `bson:"entries"`
	RunID     string          `bson:"run_id"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

type entryDocument struct {
	Version      string               `bson:"version"`
	Dependencies []dependencyDocument `bson:"dependencies"`
}

type dependencyDocument struct {
	Name        string `bson:"name"`
	Requirement string `bson:"requirement"`
}

// MongoSink upserts one document per gem into a MongoDB collection. Gems not
// written by the current run are removed, so the collection mirrors the
// latest index.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	location   string
}

// NewMongoSink connects to the deployment at uri. The database is taken from
// the URI path (default "gemindex"); documents go to the "gems" collection.
func NewMongoSink(ctx context.Context, uri string) (*MongoSink, error) {
	client, coll, err := connectMongo(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &MongoSink{
		client:     client,
		collection: coll,
		location:   coll.Database().Name() + "." + coll.Name(),
	}, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, *mongo.Collection, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb uri: %w", err)
	}
	db := cs.Database
	if db == "" {
		db = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return client, client.Database(db).Collection(defaultMongoCollection), nil
}

// Write implements Sink.
func (s *MongoSink) Write(ctx context.Context, idx *index.Index, run RunInfo) (string, error) {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, mongoBatchSize)
	flush := func() error {
		if len(models) == 0 {
			return nil
		}
		_, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		models = models[:0]
		return err
	}

	for i, g := range idx.Gems() {
		doc := toDocument(g, i, run.ID, now)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.Name}).
			SetReplacement(doc).
			SetUpsert(true))
		if len(models) == mongoBatchSize {
			if err := flush(); err != nil {
				return "", fmt.Errorf("mongodb write: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return "", fmt.Errorf("mongodb write: %w", err)
	}

	if _, err := s.collection.DeleteMany(ctx, bson.M{"run_id": bson.M{"$ne": run.ID}}); err != nil {
		return "", fmt.Errorf("mongodb prune: %w", err)
	}
	return s.location, nil
}

// Close implements Sink.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// LoadMongo reads the index stored at uri by a MongoSink.
func LoadMongo(ctx context.Context, uri string) (*index.Index, error) {
	client, coll, err := connectMongo(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(ctx)

	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	var docs []gemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}

	gems := make([]index.Gem, len(docs))
	for i, d := range docs {
		gems[i] = fromDocument(d)
	}
	return index.New(gems...), nil
}

func toDocument(g index.Gem, position int, runID string, now time.Time) gemDocument {
	doc := gemDocument{
		Name:      g.Name,
		Position:  position,
		Entries:   make([]entryDocument, len(g.Entries)),
		RunID:     runID,
		UpdatedAt: now,
	}
	for i, e := range g.Entries {
		ed := entryDocument{Version: e.Version, Dependencies: []dependencyDocument{}}
		for _, name := range slices.Sorted(maps.Keys(e.Dependencies)) {
			ed.Dependencies = append(ed.Dependencies, dependencyDocument{Name: name, Requirement: e.Dependencies[name]})
		}
		doc.Entries[i] = ed
	}
	return doc
}

func fromDocument(d gemDocument) index.Gem {
	g := index.Gem{Name: d.Name, Entries: make([]index.Entry, len(d.Entries))}
	for i, ed := range d.Entries {
		e := index.Entry{Name: d.Name, Version: ed.Version, Dependencies: make(map[string]string, len(ed.Dependencies))}
		for _, dep := range ed.Dependencies {
			e.Dependencies[dep.Name] = dep.Requirement
		}
		g.Entries[i] = e
	}
	return g
}
