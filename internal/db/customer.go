package db

import (
	"context"
	"time"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerCollection implements CustomerCollection for MongoDB
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a new customer into the database
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}

	_, err := c.Collection.InsertOne(ctx, customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerByID finds a customer by their ID
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		return nil, err
	}

	return &customer, nil
}
