package orderRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the orders and history collections.
func (repo *MongoOrderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orderModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Admission count query: pickup window + status.
		{
			Keys:    bson.D{{Key: "pickup_at", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("pickup_at_status_idx"),
		},
		// Dashboard listings by date.
		{
			Keys:    bson.D{{Key: "pickup_date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("pickup_date_status_idx"),
		},
	}
	if _, err := repo.orderColl.Indexes().CreateMany(ctx, orderModels); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	historyModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}, {Key: "occurred_at", Value: 1}},
			Options: options.Index().SetName("order_occurred_idx"),
		},
	}
	if _, err := repo.historyColl.Indexes().CreateMany(ctx, historyModels); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}
