package db

import (
	"context"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// JobFilter is the validated filter for job listing. Only the named fields
// reach the persistence layer; unknown request keys are dropped upstream.
type JobFilter struct {
	Search     string
	Status     []models.Status
	StatusNE   models.Status
	Priority   models.Priority
	CustomerID string
	AssignedTo string
}

// ListOptions carries pagination and sorting for list queries.
type ListOptions struct {
	Page  int64
	Limit int64
	Sort  string
}

// JobCollection defines the interface for job database operations
type JobCollection interface {
	InsertJob(ctx context.Context, job models.Job) (*models.Job, error)
	FindJobByID(ctx context.Context, id string) (*models.Job, error)
	FindJobs(ctx context.Context, filter JobFilter, opts ListOptions) ([]models.Job, error)
	CountJobs(ctx context.Context, filter JobFilter) (int64, error)
	UpdateJob(ctx context.Context, id string, set bson.M) error
	DeleteJob(ctx context.Context, id string) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsers(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// CustomerCollection defines the interface for customer lookups
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error)
	FindCustomerByID(ctx context.Context, id string) (*models.Customer, error)
}

// DeviceCollection defines the interface for device lookups
type DeviceCollection interface {
	InsertDevice(ctx context.Context, device models.Device) (*models.Device, error)
	FindDeviceByID(ctx context.Context, id string) (*models.Device, error)
}

// NotificationCollection defines the interface for notification records
type NotificationCollection interface {
	InsertNotification(ctx context.Context, n models.Notification) (*models.Notification, error)
	FindNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id, userID string) error
}

// CounterCollection defines the interface for named monotonic sequences
type CounterCollection interface {
	// NextSequence atomically increments the named counter and returns the
	// new value in the same storage operation.
	NextSequence(ctx context.Context, name string) (int64, error)
	// EnsureCounter seeds the named counter at the given value if it does
	// not exist yet.
	EnsureCounter(ctx context.Context, name string, seed int64) error
}
