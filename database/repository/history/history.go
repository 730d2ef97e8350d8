package historyRepo

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

// HistoryRepository reads the append-only audit trail. Writes happen inside
// the order transactions; no update or delete is exposed anywhere.
type HistoryRepository interface {
	ListFor(orderID string) ([]models.HistoryEntry, error)
}

// MongoHistoryRepo implements HistoryRepository using MongoDB.
type MongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo constructs a new instance of MongoHistoryRepo.
func NewMongoHistoryRepo() HistoryRepository {
	db := database.MongoClient.Database(database.DBName)
	return &MongoHistoryRepo{coll: db.Collection("order_history")}
}

// ListFor returns the order's entries ordered by occurred_at ascending.
func (repo *MongoHistoryRepo) ListFor(orderID string) ([]models.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching history for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding history entries: %w", err)
	}
	return entries, nil
}
