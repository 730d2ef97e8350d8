package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"floreria/database"
	"floreria/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// singletonID keys the one schedule-config document.
const singletonID = "schedule"

// ScheduleRepository persists the shop-wide schedule configuration.
type ScheduleRepository interface {
	Get() (*models.ScheduleConfig, error)
	Upsert(cfg *models.ScheduleConfig) error
}

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs a new instance of MongoScheduleRepo.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database(database.DBName)
	return &MongoScheduleRepo{coll: db.Collection("schedule_config")}
}

// Get fetches the current configuration. Returns mongo.ErrNoDocuments if the
// shop was never configured.
func (repo *MongoScheduleRepo) Get() (*models.ScheduleConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cfg models.ScheduleConfig
	if err := repo.coll.FindOne(ctx, bson.M{"_id": singletonID}).Decode(&cfg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("error fetching schedule config: %w", err)
	}
	return &cfg, nil
}

// Upsert replaces the singleton configuration document.
func (repo *MongoScheduleRepo) Upsert(cfg *models.ScheduleConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	doc := bson.M{
		"_id":                 singletonID,
		"openMinute":          cfg.OpenMinute,
		"closeMinute":         cfg.CloseMinute,
		"slotIntervalMinutes": cfg.SlotIntervalMinutes,
		"prepBufferMinutes":   cfg.PrepBufferMinutes,
		"capacityPerSlot":     cfg.CapacityPerSlot,
		"updatedAt":           cfg.UpdatedAt,
	}
	if _, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": singletonID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert schedule config: %w", err)
	}
	return nil
}
