package orderRepo

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

// MongoOrderRepo implements OrderRepository using MongoDB. bucketColl holds
// one counter document per pickup slot; admissions and releases write it so
// concurrent bookings contend on shared state instead of disjoint inserts.
type MongoOrderRepo struct {
	orderColl   *mongo.Collection
	historyColl *mongo.Collection
	bucketColl  *mongo.Collection
}

// NewMongoOrderRepo constructs a new instance of MongoOrderRepo.
func NewMongoOrderRepo() OrderRepository {
	db := database.MongoClient.Database(database.DBName)
	return &MongoOrderRepo{
		orderColl:   db.Collection("orders"),
		historyColl: db.Collection("order_history"),
		bucketColl:  db.Collection("slot_buckets"),
	}
}

func (repo *MongoOrderRepo) GetByID(orderID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := repo.orderColl.FindOne(ctx, bson.M{"id": orderID}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching order with id %s: %w", orderID, err)
	}
	return &order, nil
}

// List returns orders for the staff dashboard, newest pickup first.
func (repo *MongoOrderRepo) List(filter ListFilter) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PickupDate != "" {
		query["pickup_date"] = filter.PickupDate
	}

	opts := options.Find().SetSort(bson.D{{Key: "pickup_at", Value: -1}})
	cursor, err := repo.orderColl.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("error decoding orders: %w", err)
	}
	return orders, nil
}

// CountActiveInWindow counts slot-holding orders with pickup_at in [start, end).
func (repo *MongoOrderRepo) CountActiveInWindow(ctx context.Context, start, end time.Time) (int, error) {
	count, err := repo.orderColl.CountDocuments(ctx, activeWindowFilter(start, end))
	if err != nil {
		return 0, fmt.Errorf("error counting active orders in window: %w", err)
	}
	return int(count), nil
}

func activeWindowFilter(start, end time.Time) bson.M {
	return bson.M{
		"pickup_at": bson.M{"$gte": start, "$lt": end},
		"status":    bson.M{"$nin": bson.A{models.StatusCancelled, models.StatusRejected}},
	}
}
