package publish

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stackpin/pkg/facts"
)

const (
	// DefaultMongoDatabase is used when the target URI names no database.
	DefaultMongoDatabase = "stackpin"

	// DefaultMongoCollection is used when the target has no collection parameter.
	DefaultMongoCollection = "facts"
)

// MongoSink appends one document per run to a collection, keeping the
// resolution history.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoSink wraps an existing collection. Close leaves the client open.
func NewMongoSink(coll *mongo.Collection) *MongoSink {
	return &MongoSink{client: coll.Database().Client(), coll: coll}
}

// mongoTarget is a parsed mongodb:// or mongodb+srv:// publish target.
type mongoTarget struct {
	uri        string
	database   string
	collection string
}

// parseMongoTarget removes the collection parameter, which the driver does
// not know, and reads the database from the URI path.
func parseMongoTarget(target string) (*mongoTarget, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb target: %w", err)
	}
	q := u.Query()
	t := &mongoTarget{
		database:   strings.Trim(u.Path, "/"),
		collection: q.Get("collection"),
	}
	q.Del("collection")
	u.RawQuery = q.Encode()
	t.uri = u.String()

	if t.database == "" {
		t.database = DefaultMongoDatabase
	}
	if t.collection == "" {
		t.collection = DefaultMongoCollection
	}
	return t, nil
}

// OpenMongo connects to the target and verifies the connection with a ping.
func OpenMongo(ctx context.Context, target string) (*MongoSink, error) {
	t, err := parseMongoTarget(target)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(t.uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(t.database).Collection(t.collection),
		owned:  true,
	}, nil
}

func (s *MongoSink) Publish(ctx context.Context, rec facts.Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("publish to mongodb %s.%s: %w", s.coll.Database().Name(), s.coll.Name(), err)
	}
	return nil
}

func (s *MongoSink) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
