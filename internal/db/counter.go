package db

import (
	"context"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCounterCollection implements CounterCollection for MongoDB
type MongoCounterCollection struct {
	Collection *mongo.Collection
}

// NextSequence atomically increments the named counter and reads back the
// new value in a single FindOneAndUpdate. Concurrent callers each observe
// a distinct value; numbers are never reused or rolled back.
func (c *MongoCounterCollection) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"sequence_value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.SequenceValue, nil
}

// EnsureCounter seeds the named counter if it does not exist. Existing
// counters are left untouched.
func (c *MongoCounterCollection) EnsureCounter(ctx context.Context, name string, seed int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": name},
		bson.M{"$setOnInsert": bson.M{"sequence_value": seed}},
		opts,
	)
	return err
}
