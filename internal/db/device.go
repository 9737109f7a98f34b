package db

import (
	"context"
	"time"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDeviceCollection implements DeviceCollection for MongoDB
type MongoDeviceCollection struct {
	Collection *mongo.Collection
}

// InsertDevice inserts a new device into the database
func (c *MongoDeviceCollection) InsertDevice(ctx context.Context, device models.Device) (*models.Device, error) {
	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now
	if device.ID.IsZero() {
		device.ID = primitive.NewObjectID()
	}

	_, err := c.Collection.InsertOne(ctx, device)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// FindDeviceByID finds a device by its ID
func (c *MongoDeviceCollection) FindDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var device models.Device
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&device)
	if err != nil {
		return nil, err
	}

	return &device, nil
}
