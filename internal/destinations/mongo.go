package destinations

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

// ── MongoDB destination ────────────────────────────────────
// One document per record; replace mode drops the collection first.
// Unset fields are left absent rather than written as null.

type mongoDest struct {
	client  *mongo.Client
	dbName  string
	coll    string
	mapping []config.ColumnMapping
}

func newMongoDest(cfg config.DestConfig, mapping []config.ColumnMapping) (*mongoDest, error) {
	uri := cfg.DSN
	if uri == "" {
		port := cfg.Port
		if port == 0 {
			port = 27017
		}
		if cfg.User != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", cfg.Host, port)
		}
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb destination needs a database")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoDest{client: client, dbName: cfg.Database, coll: cfg.Table, mapping: mapping}, nil
}

func (m *mongoDest) Write(ctx context.Context, schema *record.Schema, records []*record.Record, mode Mode) (int, error) {
	plan, err := buildPlan(schema, m.mapping)
	if err != nil {
		return 0, err
	}
	coll := m.client.Database(m.dbName).Collection(m.coll)

	if mode == ModeReplace {
		if err := coll.Drop(ctx); err != nil {
			return 0, fmt.Errorf("drop collection: %w", err)
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]any, 0, len(records))
	for _, rec := range records {
		vals, err := plan.row(rec)
		if err != nil {
			return 0, err
		}
		doc := bson.M{}
		for i, v := range vals {
			if v == nil {
				continue
			}
			doc[plan.columns[i]] = v
		}
		docs = append(docs, doc)
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (m *mongoDest) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
