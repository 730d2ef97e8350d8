package orderRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"floreria/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bucketKey identifies the shared counter document for one pickup slot. Every
// admission for that slot writes this document, which is what makes two
// concurrent transactions actually conflict instead of committing side by side
// on disjoint write sets.
func bucketKey(date string, minute int) string {
	return fmt.Sprintf("%s#%04d", date, minute)
}

// admissionFilter matches the slot counter only while it is below capacity.
// The capacity predicate lives in the filter, not in application code reading
// a count: a full bucket simply matches nothing.
func admissionFilter(key string, capacity int) bson.M {
	return bson.M{"_id": key, "count": bson.M{"$lt": capacity}}
}

// admissionUpdate increments the counter, seeding the window metadata when the
// upsert creates the document.
func admissionUpdate(bucketStart, bucketEnd time.Time) bson.M {
	return bson.M{
		"$inc":         bson.M{"count": 1},
		"$setOnInsert": bson.M{"window_start": bucketStart, "window_end": bucketEnd},
	}
}

// releaseFilter matches the slot counter only while it has something to give
// back; a missing or zero counter is left alone.
func releaseFilter(key string) bson.M {
	return bson.M{"_id": key, "count": bson.M{"$gt": 0}}
}

// CreateWithAdmission runs the admission critical section. The gate is a
// conditional $inc on the per-slot counter document: the filter only matches
// below capacity, so the winning transactions each bump a document the others
// must also write. A loser either finds no match (bucket already full) or
// aborts on the write conflict and retries as ErrTxnConflict. Counting a
// snapshot and inserting would not serialize here, since two inserts of
// distinct orders never touch each other's write set.
func (repo *MongoOrderRepo) CreateWithAdmission(
	ctx context.Context,
	order *models.Order,
	entry *models.HistoryEntry,
	bucketStart, bucketEnd time.Time,
	capacity int,
) error {
	client := repo.orderColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	key := bucketKey(order.PickupDate, order.PickupMinute)
	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.bucketColl.UpdateOne(sc,
			admissionFilter(key, capacity),
			admissionUpdate(bucketStart, bucketEnd),
			options.Update().SetUpsert(true),
		)
		if err != nil {
			// The upsert races itself: when the counter exists but is at
			// capacity, the filter matches nothing and the insert attempt
			// collides with the existing _id.
			if mongo.IsDuplicateKeyError(err) {
				return ErrCapacityExhausted
			}
			return fmt.Errorf("admission counter update failed: %w", err)
		}
		if res.MatchedCount == 0 && res.UpsertedCount == 0 {
			return ErrCapacityExhausted
		}
		if _, err := repo.orderColl.InsertOne(sc, order); err != nil {
			return fmt.Errorf("insert order failed: %w", err)
		}
		if _, err := repo.historyColl.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("insert history entry failed: %w", err)
		}
		return nil
	}

	return repo.runTxn(ctx, sess, txnFn)
}

// ApplyTransition replaces the order document guarded on its previous status
// and appends the matching history entry, all-or-nothing. A MatchedCount of
// zero means another writer moved the order first. A transition out of the
// slot-holding states gives the admission counter back in the same
// transaction.
func (repo *MongoOrderRepo) ApplyTransition(
	ctx context.Context,
	order *models.Order,
	prev models.OrderStatus,
	entry *models.HistoryEntry,
) error {
	client := repo.orderColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": order.ID, "status": prev}
		res, err := repo.orderColl.ReplaceOne(sc, filter, order)
		if err != nil {
			return fmt.Errorf("replace order failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrStaleStatus
		}
		if _, err := repo.historyColl.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("insert history entry failed: %w", err)
		}
		if prev.Active() && !order.Status.Active() {
			key := bucketKey(order.PickupDate, order.PickupMinute)
			if _, err := repo.bucketColl.UpdateOne(sc, releaseFilter(key),
				bson.M{"$inc": bson.M{"count": -1}}); err != nil {
				return fmt.Errorf("release admission counter failed: %w", err)
			}
		}
		return nil
	}

	return repo.runTxn(ctx, sess, txnFn)
}

// runTxn wraps txnFn in start/commit/abort and maps the outcome through
// mapTxnError.
func (repo *MongoOrderRepo) runTxn(ctx context.Context, sess mongo.Session, txnFn func(mongo.SessionContext) error) error {
	err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	return mapTxnError(err)
}

// mapTxnError separates "rejected" from "retry" for transaction outcomes.
// Sentinels pass through even when wrapped; any server error carrying the
// TransientTransactionError label (write conflicts between admission
// transactions land here) becomes ErrTxnConflict so callers can tell the user
// to retry against the current slot list.
func mapTxnError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCapacityExhausted) || errors.Is(err, ErrStaleStatus) {
		return err
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorLabel("TransientTransactionError") {
		return ErrTxnConflict
	}
	return fmt.Errorf("order transaction failed: %w", err)
}
