package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/treecontrast/pkg/errors"
	"github.com/matzehuels/treecontrast/pkg/observability"
)

// MongoStore is a MongoDB-backed Store for shared deployments.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to the MongoDB instance at uri and pings it to
// verify the connection before returning. Runs are stored in the given
// database under the "runs" collection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "pinging mongodb")
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection("runs"),
	}, nil
}

// Put stores a run, replacing any existing record with the same ID.
func (s *MongoStore) Put(ctx context.Context, run *Run) error {
	opts := mongooptions.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, opts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "put", err)
		return errors.Wrap(errors.ErrCodeInternal, err, "storing run %q", run.ID)
	}
	observability.Store().OnStorePut(ctx, run.ID)
	return nil
}

// Get retrieves a run by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	var run Run
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnStoreGet(ctx, id, false, time.Since(start))
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	if err != nil {
		observability.Store().OnStoreError(ctx, "get", err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "loading run %q", id)
	}
	observability.Store().OnStoreGet(ctx, id, true, time.Since(start))
	return &run, nil
}

// List returns up to limit runs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := mongooptions.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "list", err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing runs")
	}
	defer cursor.Close(ctx)

	var runs []*Run
	if err := cursor.All(ctx, &runs); err != nil {
		observability.Store().OnStoreError(ctx, "list", err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decoding runs")
	}
	return runs, nil
}

// Delete removes a run by ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		observability.Store().OnStoreError(ctx, "delete", err)
		return errors.Wrap(errors.ErrCodeInternal, err, "deleting run %q", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
