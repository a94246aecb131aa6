package repository

import (
	"context"
	"testing"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func TestMongoRideEventRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("index failure is logged", func(mt *mtest.T) {
		log, logs := observedLogger()
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized to create indexes",
		}))

		repo := NewMongoRideEventRepository(mt.DB, log)
		require.NotNil(t, repo)

		entries := logs.FilterMessage("Failed to create ride event indexes").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap()["error"], "not authorized")
	})

	mt.Run("append and read back", func(mt *mtest.T) {
		log, logs := observedLogger()
		occurredAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, mt.DB.Name()+".ride_events", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "e1"},
				{Key: "rideId", Value: int64(1)},
				{Key: "sagaId", Value: "s1"},
				{Key: "step", Value: entity.StepPersistRide},
				{Key: "outcome", Value: entity.OutcomeSucceeded},
				{Key: "occurredAt", Value: primitive.NewDateTimeFromTime(occurredAt)},
			}),
		)

		repo := NewMongoRideEventRepository(mt.DB, log)
		assert.Zero(t, logs.Len())

		event := &entity.RideEvent{RideID: 1, SagaID: "s1", Step: entity.StepPersistRide, Outcome: entity.OutcomeSucceeded}
		require.NoError(t, repo.Append(context.Background(), event))
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.OccurredAt.IsZero())

		events, err := repo.FindByRideID(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "s1", events[0].SagaID)
		assert.Equal(t, entity.StepPersistRide, events[0].Step)
		assert.True(t, occurredAt.Equal(events[0].OccurredAt))
	})

	mt.Run("append failure", func(mt *mtest.T) {
		log, _ := observedLogger()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "duplicate key"}),
		)

		repo := NewMongoRideEventRepository(mt.DB, log)
		err := repo.Append(context.Background(), &entity.RideEvent{ID: "e1", RideID: 1})
		assert.ErrorContains(t, err, "failed to append ride event")
	})
}
