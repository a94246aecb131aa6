package repository

import (
	"context"
	"fmt"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"
	"ridenow-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRideEventRepository implements RideEventRepository
type MongoRideEventRepository struct {
	collection *mongo.Collection
}

func rideEventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "rideId", Value: 1},
				{Key: "occurredAt", Value: 1},
			},
		},
		{
			Keys: bson.M{"sagaId": 1},
		},
	}
}

// NewMongoRideEventRepository creates a new saga journal repository. A failed
// index build is logged; the journal still works, only reads get slower.
func NewMongoRideEventRepository(db *mongo.Database, log logger.Logger) repository.RideEventRepository {
	collection := db.Collection("ride_events")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, rideEventIndexes()); err != nil {
		log.Warn("Failed to create ride event indexes", "collection", collection.Name(), "error", err)
	}

	return &MongoRideEventRepository{
		collection: collection,
	}
}

// Append inserts one journal entry
func (r *MongoRideEventRepository) Append(ctx context.Context, event *entity.RideEvent) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append ride event: %w", err)
	}
	return nil
}

// FindByRideID lists the journal of a ride, oldest first
func (r *MongoRideEventRepository) FindByRideID(ctx context.Context, rideID int64) ([]*entity.RideEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"rideId": rideID}, options.Find().
		SetSort(bson.D{{Key: "occurredAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]*entity.RideEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
