// Package mongodb implements storage interfaces using MongoDB
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirosfoundation/go-dpiva/internal/storage"
)

// Store implements storage.ResultStore using MongoDB
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	submissions *mongo.Collection
}

// Config holds MongoDB connection settings
type Config struct {
	URI        string
	Database   string
	Collection string
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "submissions"
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:      client,
		db:          db,
		submissions: db.Collection(collection),
	}

	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.submissions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "result_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating submission indexes: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// SaveResult upserts the record keyed by result_id. The document _id is
// assigned on first insert and kept on later saves.
func (s *Store) SaveResult(ctx context.Context, sub *storage.Submission) error {
	if sub.ResultID == "" {
		return fmt.Errorf("result id is required")
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	id := sub.ID
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}

	update := bson.M{
		"$set":         submissionFields(sub),
		"$setOnInsert": bson.M{"_id": id},
	}
	res, err := s.submissions.UpdateOne(ctx,
		bson.M{"result_id": sub.ResultID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving result %s: %w", sub.ResultID, err)
	}

	if res.UpsertedCount > 0 {
		sub.ID = id
		return nil
	}
	var existing struct {
		ID string `bson:"_id"`
	}
	err = s.submissions.FindOne(ctx, bson.M{"result_id": sub.ResultID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&existing)
	if err != nil {
		return fmt.Errorf("reading result %s: %w", sub.ResultID, err)
	}
	sub.ID = existing.ID
	return nil
}

func (s *Store) GetResult(ctx context.Context, resultID string) (*storage.Submission, error) {
	var sub storage.Submission
	err := s.submissions.FindOne(ctx, bson.M{"result_id": resultID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) ListResults(ctx context.Context, filter *storage.ResultFilter) ([]*storage.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			opts.SetLimit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			opts.SetSkip(int64(filter.Offset))
		}
	}

	cursor, err := s.submissions.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []*storage.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *Store) CountResults(ctx context.Context, filter *storage.ResultFilter) (int64, error) {
	return s.submissions.CountDocuments(ctx, buildQuery(filter))
}

func buildQuery(filter *storage.ResultFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.Target != "" {
		query["target"] = filter.Target
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Since != nil {
		query["created_at"] = bson.M{"$gte": *filter.Since}
	}
	return query
}

// submissionFields lists every field but _id, which may not change on update.
func submissionFields(sub *storage.Submission) bson.M {
	stages := bson.M{}
	for name, st := range sub.Stages {
		stages[name] = st
	}
	return bson.M{
		"result_id":    sub.ResultID,
		"file":         sub.File,
		"client_id":    sub.ClientID,
		"target":       sub.Target,
		"status":       sub.Status,
		"state":        sub.State,
		"stages":       stages,
		"errors":       sub.Errors,
		"warnings":     sub.Warnings,
		"created_at":   sub.CreatedAt,
		"completed_at": sub.CompletedAt,
	}
}
