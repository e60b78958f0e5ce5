package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "diagrams"

// MongoStore keeps diagrams in a MongoDB collection, one document per
// diagram keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored shape. Counts are denormalized so List can use a
// projection instead of loading every diagram.
type mongoDoc struct {
	ID        string           `bson:"_id"`
	Title     string           `bson:"title"`
	UpdatedAt string           `bson:"updated_at"`
	Nodes     int              `bson:"nodes"`
	Edges     int              `bson:"edges"`
	Diagram   *diagram.Diagram `bson:"diagram"`
}

// NewMongoStore connects to uri and uses database.collection. An empty
// collection name selects [DefaultCollection].
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, d *diagram.Diagram) error {
	if err := checkPut(id, d); err != nil {
		return err
	}
	sum := summarize(id, d)
	doc := mongoDoc{
		ID:        id,
		Title:     sum.Title,
		UpdatedAt: sum.UpdatedAt,
		Nodes:     sum.Nodes,
		Edges:     sum.Edges,
		Diagram:   d,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store diagram %s", id)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load diagram %s", id)
	}
	if doc.Diagram == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "diagram %s: empty document", id)
	}
	d := doc.Diagram
	if d.Nodes == nil {
		d.Nodes = map[string]diagram.Node{}
	}
	if d.Edges == nil {
		d.Edges = map[string]diagram.Edge{}
	}
	return d, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete diagram %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"diagram": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list diagrams")
	}
	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list diagrams")
	}
	return out, nil
}

// Drop removes the collection. Used by tests against a scratch database.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
