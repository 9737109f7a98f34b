package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device represents a customer's device under repair
type Device struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	SerialNumber string             `bson:"serial_number" json:"serial_number"`
	DeviceType   string             `bson:"device_type" json:"device_type"`
	Make         string             `bson:"make,omitempty" json:"make,omitempty"`
	Model        string             `bson:"model,omitempty" json:"model,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
