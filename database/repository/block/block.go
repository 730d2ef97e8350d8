package blockRepo

import (
	"context"
	"fmt"
	"time"

	"floreria/database"
	"floreria/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BlockRepository defines methods to interact with admin-declared closures.
type BlockRepository interface {
	Create(block *models.Block) error
	Delete(blockID string) (bool, error)
	GetByDate(date string) ([]models.Block, error)
	GetRange(from, to string) ([]models.Block, error)
	FindFullDay(date string) (*models.Block, error)
}

// MongoBlockRepo implements BlockRepository using MongoDB.
type MongoBlockRepo struct {
	coll *mongo.Collection
}

// NewMongoBlockRepo constructs a new instance of MongoBlockRepo.
func NewMongoBlockRepo() BlockRepository {
	db := database.MongoClient.Database(database.DBName)
	return &MongoBlockRepo{coll: db.Collection("blocks")}
}

func (repo *MongoBlockRepo) Create(block *models.Block) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, block); err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

// Delete hard-deletes the block. The bool result reports whether a document
// was actually removed.
func (repo *MongoBlockRepo) Delete(blockID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"block_id": blockID})
	if err != nil {
		return false, fmt.Errorf("failed to delete block %s: %w", blockID, err)
	}
	return res.DeletedCount > 0, nil
}

// GetByDate retrieves every block declared for the given date.
func (repo *MongoBlockRepo) GetByDate(date string) ([]models.Block, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("error fetching blocks for %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var blocks []models.Block
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("error decoding blocks: %w", err)
	}
	return blocks, nil
}

// GetRange retrieves blocks with from <= date <= to (lexicographic on the
// "2006-01-02" layout, which matches chronological order).
func (repo *MongoBlockRepo) GetRange(from, to string) ([]models.Block, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching blocks in [%s, %s]: %w", from, to, err)
	}
	defer cursor.Close(ctx)

	var blocks []models.Block
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("error decoding blocks: %w", err)
	}
	return blocks, nil
}

// FindFullDay returns the existing full-day block for the date, if any.
// Used to keep duplicate full-day blocks idempotent.
func (repo *MongoBlockRepo) FindFullDay(date string) (*models.Block, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var block models.Block
	filter := bson.M{"date": date, "start": models.FullDayMinute}
	if err := repo.coll.FindOne(ctx, filter).Decode(&block); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching full-day block for %s: %w", date, err)
	}
	return &block, nil
}
