package orderRepo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stretchr/testify/require"
)

func TestBucketKeyPerSlot(t *testing.T) {
	require.Equal(t, "2026-09-12#0860", bucketKey("2026-09-12", 14*60+20))
	require.NotEqual(t,
		bucketKey("2026-09-12", 14*60+20),
		bucketKey("2026-09-12", 14*60+30),
		"neighbouring slots must contend on different counters")
	require.NotEqual(t,
		bucketKey("2026-09-12", 14*60+20),
		bucketKey("2026-09-13", 14*60+20))
}

func TestAdmissionFilterGatesOnCapacity(t *testing.T) {
	filter := admissionFilter("2026-09-12#0860", 2)

	// The capacity predicate must live in the filter itself: a full bucket
	// matches nothing, so admission never depends on a separately-read count.
	require.Equal(t, bson.M{
		"_id":   "2026-09-12#0860",
		"count": bson.M{"$lt": 2},
	}, filter)
}

func TestAdmissionUpdateIncrementsSharedCounter(t *testing.T) {
	start := time.Date(2026, 9, 12, 14, 20, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)
	update := admissionUpdate(start, end)

	require.Equal(t, bson.M{"count": 1}, update["$inc"],
		"every admission must write the shared counter")
	require.Equal(t, bson.M{"window_start": start, "window_end": end}, update["$setOnInsert"])
}

func TestReleaseFilterNeverUnderflows(t *testing.T) {
	require.Equal(t, bson.M{
		"_id":   "2026-09-12#0860",
		"count": bson.M{"$gt": 0},
	}, releaseFilter("2026-09-12#0860"))
}

func TestMapTxnErrorPassesSentinelsThrough(t *testing.T) {
	require.NoError(t, mapTxnError(nil))
	require.ErrorIs(t, mapTxnError(ErrCapacityExhausted), ErrCapacityExhausted)
	require.ErrorIs(t, mapTxnError(ErrStaleStatus), ErrStaleStatus)

	wrapped := fmt.Errorf("admission counter update failed: %w", ErrCapacityExhausted)
	require.ErrorIs(t, mapTxnError(wrapped), ErrCapacityExhausted,
		"sentinels must survive wrapping")
}

func TestMapTxnErrorTransientConflict(t *testing.T) {
	cmdErr := mongo.CommandError{
		Code:    112,
		Message: "WriteConflict",
		Labels:  []string{"TransientTransactionError"},
	}
	require.ErrorIs(t, mapTxnError(cmdErr), ErrTxnConflict)

	// Driver errors come back wrapped by the transaction body; the label must
	// still be found underneath.
	wrapped := fmt.Errorf("admission counter update failed: %w", cmdErr)
	require.ErrorIs(t, mapTxnError(wrapped), ErrTxnConflict)

	// Write conflicts inside a transaction surface as a WriteException, not a
	// CommandError; both carry the label and both must map to a retry.
	writeErr := mongo.WriteException{Labels: []string{"TransientTransactionError"}}
	require.ErrorIs(t, mapTxnError(fmt.Errorf("insert order failed: %w", writeErr)), ErrTxnConflict)
}

func TestMapTxnErrorGenericFailure(t *testing.T) {
	plain := errors.New("connection reset")
	err := mapTxnError(plain)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTxnConflict)
	require.ErrorIs(t, err, plain)

	labelless := mongo.CommandError{Code: 11600, Message: "InterruptedAtShutdown"}
	require.NotErrorIs(t, mapTxnError(labelless), ErrTxnConflict)
}
