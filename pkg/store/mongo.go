package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "tsaview"
	DefaultCollection = "graphs"
)

// MongoOptions configures [NewMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string

	// Timeout bounds the initial connect and ping. Zero means 10 seconds.
	Timeout time.Duration
}

// Mongo reads graph documents from a MongoDB collection, ordered by rank
// ascending and then by insertion. It is safe for concurrent use.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	id     string
}

// NewMongo connects to MongoDB and pings the server, retrying transient
// connection failures.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetConnectTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "connect mongodb")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return cache.Retryable(fmt.Errorf("ping mongodb: %w", err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Mongo{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		id:     "mongo:" + opts.Database + "/" + opts.Collection,
	}, nil
}

var rankOrder = bson.D{{Key: "rank", Value: 1}, {Key: "_id", Value: 1}}

// Count implements Store.
func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count graphs: %w", err)
	}
	return int(n), nil
}

// Graph implements Store.
func (m *Mongo) Graph(ctx context.Context, i int) (graph.Document, error) {
	if i < 0 {
		return graph.Document{}, notFound(i, 0)
	}
	opts := options.FindOne().SetSort(rankOrder).SetSkip(int64(i))
	var doc graph.Document
	err := m.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		n, _ := m.Count(ctx)
		return graph.Document{}, notFound(i, n)
	}
	if err != nil {
		return graph.Document{}, fmt.Errorf("find graph %d: %w", i, err)
	}
	return doc, nil
}

// Top implements Store.
func (m *Mongo) Top(ctx context.Context, n int) ([]graph.Document, error) {
	opts := options.Find().SetSort(rankOrder)
	if n >= 0 {
		opts.SetLimit(int64(n))
	}
	if n == 0 {
		return []graph.Document{}, nil
	}
	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find graphs: %w", err)
	}
	var docs []graph.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode graphs: %w", err)
	}
	return docs, nil
}

// Insert implements Writer. It also makes sure the rank index exists.
func (m *Mongo) Insert(ctx context.Context, docs []graph.Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "rank", Value: 1}}})
	if err != nil {
		return fmt.Errorf("create rank index: %w", err)
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	if _, err := m.coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert graphs: %w", err)
	}
	return nil
}

// ID implements Store.
func (m *Mongo) ID() string { return m.id }

// Version implements Store. It combines the document count with the newest
// _id, which covers inserts and deletes made through any client. In-place
// updates of existing documents are not seen.
func (m *Mongo) Version(ctx context.Context) (string, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return "", fmt.Errorf("count graphs: %w", err)
	}
	if n == 0 {
		return mongoVersion(m.id, 0, ""), nil
	}

	var newest struct {
		ID bson.RawValue `bson:"_id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.D{{Key: "_id", Value: 1}})
	err = m.coll.FindOne(ctx, bson.D{}, opts).Decode(&newest)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return mongoVersion(m.id, 0, ""), nil
	}
	if err != nil {
		return "", fmt.Errorf("find newest graph: %w", err)
	}
	return mongoVersion(m.id, n, newest.ID.String()), nil
}

func mongoVersion(id string, count int64, newest string) string {
	return fmt.Sprintf("%s@%d:%s", id, count, newest)
}

// Close implements Store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var (
	_ Store  = (*Mongo)(nil)
	_ Writer = (*Mongo)(nil)
)
