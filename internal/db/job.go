package db

import (
	"context"
	"strings"
	"time"

	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoJobCollection implements JobCollection for MongoDB
type MongoJobCollection struct {
	Collection *mongo.Collection
}

// InsertJob inserts a new job and returns it with its generated id
func (c *MongoJobCollection) InsertJob(ctx context.Context, job models.Job) (*models.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}

	_, err := c.Collection.InsertOne(ctx, job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindJobByID finds a job by its ID
func (c *MongoJobCollection) FindJobByID(ctx context.Context, id string) (*models.Job, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var job models.Job
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&job)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FindJobs finds jobs matching the filter with pagination and sorting
func (c *MongoJobCollection) FindJobs(ctx context.Context, filter JobFilter, opts ListOptions) ([]models.Job, error) {
	query := buildJobQuery(filter)

	findOpts := options.Find().
		SetSort(parseSort(opts.Sort)).
		SetLimit(opts.Limit).
		SetSkip((opts.Page - 1) * opts.Limit)

	cursor, err := c.Collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountJobs counts jobs matching the filter
func (c *MongoJobCollection) CountJobs(ctx context.Context, filter JobFilter) (int64, error) {
	return c.Collection.CountDocuments(ctx, buildJobQuery(filter))
}

// UpdateJob applies a $set update to a job by its ID
func (c *MongoJobCollection) UpdateJob(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteJob deletes a job by its ID
func (c *MongoJobCollection) DeleteJob(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// buildJobQuery translates the validated filter into a Mongo query.
// Status exclusion takes precedence over status selection.
func buildJobQuery(filter JobFilter) bson.M {
	query := bson.M{}

	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"job_number": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	if filter.StatusNE != "" {
		query["status"] = bson.M{"$ne": filter.StatusNE}
	} else if len(filter.Status) == 1 {
		query["status"] = filter.Status[0]
	} else if len(filter.Status) > 1 {
		query["status"] = bson.M{"$in": filter.Status}
	}

	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.CustomerID != "" {
		if objectID, err := primitive.ObjectIDFromHex(filter.CustomerID); err == nil {
			query["customer_id"] = objectID
		}
	}
	if filter.AssignedTo != "" {
		if objectID, err := primitive.ObjectIDFromHex(filter.AssignedTo); err == nil {
			query["assigned_to"] = objectID
		}
	}

	return query
}

// parseSort converts a "-created_at" style sort expression into a sort
// document. A leading dash means descending.
func parseSort(sort string) bson.D {
	if sort == "" {
		sort = "-created_at"
	}
	order := 1
	field := sort
	if strings.HasPrefix(sort, "-") {
		order = -1
		field = strings.TrimPrefix(sort, "-")
	}
	return bson.D{{Key: field, Value: order}}
}
