package db

import (
	"context"
	"time"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationCollection implements NotificationCollection for MongoDB
type MongoNotificationCollection struct {
	Collection *mongo.Collection
}

// InsertNotification inserts a durable notification record
func (c *MongoNotificationCollection) InsertNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	n.CreatedAt = time.Now()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}

	_, err := c.Collection.InsertOne(ctx, n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindNotificationsByUser finds a user's notifications, newest first
func (c *MongoNotificationCollection) FindNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	query := bson.M{"user_id": objectID}
	if unreadOnly {
		query["is_read"] = false
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read, scoped to its owner
func (c *MongoNotificationCollection) MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userObjectID},
		bson.M{"$set": bson.M{"is_read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNotification deletes a notification, scoped to its owner
func (c *MongoNotificationCollection) DeleteNotification(ctx context.Context, id, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userObjectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
