package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type blobDoc struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Mongo stores one document per key in a blobs collection.
type Mongo struct {
	collection *mongo.Collection
}

// NewMongo creates a Mongo-backed KV over the given database.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{collection: db.Collection("blobs")}
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc blobDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (m *Mongo) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		blobDoc{Key: key, Value: value},
		options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
