package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jdalgard/pageplan/pkg/errors"
)

// MongoConfig configures a MongoDB archive connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// SetDefaults fills in zero-valued fields.
func (c *MongoConfig) SetDefaults() {
	if c.URI == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if c.Database == "" {
		c.Database = "pageplan"
	}
	if c.Collection == "" {
		c.Collection = "plans"
	}
}

// MongoArchive stores records in a MongoDB collection, keyed by record ID.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoArchive connects to MongoDB and verifies the connection with a ping.
func NewMongoArchive(ctx context.Context, cfg MongoConfig) (*MongoArchive, error) {
	cfg.SetDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}

	return &MongoArchive{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put stores a record.
func (a *MongoArchive) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record ID is required")
	}
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeInvalidInput, "record already exists: %s", rec.ID)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert record")
	}
	return nil
}

// Get retrieves a record by ID.
func (a *MongoArchive) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return Record{}, errors.New(errors.ErrCodePlanNotFound, "no archived plan: %s", id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "find record")
	}
	return rec, nil
}

// List returns summaries of all records, newest first.
func (a *MongoArchive) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"plan": 0})

	cur, err := a.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list records")
	}
	defer cur.Close(ctx)

	var summaries []Summary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode records")
	}
	return summaries, nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
