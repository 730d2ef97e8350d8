package orderRepo

import (
	"context"
	"errors"
	"time"

	"floreria/models"
)

// Sentinel errors surfaced by the transactional paths. The service layer maps
// them onto user-facing admission/transition results.
var (
	// ErrNotFound means no order matched the given ID.
	ErrNotFound = errors.New("order not found")
	// ErrCapacityExhausted means the slot bucket was already at capacity when
	// the admission transaction counted it.
	ErrCapacityExhausted = errors.New("slot capacity exhausted")
	// ErrStaleStatus means the order's status changed underneath the caller
	// between read and write.
	ErrStaleStatus = errors.New("order status changed concurrently")
	// ErrTxnConflict means the storage transaction aborted on a write conflict
	// and the operation is safe to retry.
	ErrTxnConflict = errors.New("admission transaction conflict")
)

// ListFilter narrows dashboard order listings. Zero values mean "no filter".
type ListFilter struct {
	Status     models.OrderStatus
	PickupDate string
}

// OrderRepository defines data access for orders and their audit trail.
// Mutations that must stay consistent with a history write run inside a single
// Mongo session transaction.
type OrderRepository interface {
	GetByID(orderID string) (*models.Order, error)
	List(filter ListFilter) ([]models.Order, error)

	// CountActiveInWindow counts orders holding a slot whose pickup timestamp
	// falls in [start, end). Rejected and cancelled orders are excluded.
	CountActiveInWindow(ctx context.Context, start, end time.Time) (int, error)

	// CreateWithAdmission atomically re-counts the slot bucket and inserts the
	// order plus its zero-th history entry. Returns ErrCapacityExhausted when
	// the bucket is full and ErrTxnConflict on a retryable transaction abort.
	CreateWithAdmission(ctx context.Context, order *models.Order, entry *models.HistoryEntry, bucketStart, bucketEnd time.Time, capacity int) error

	// ApplyTransition atomically replaces the order document and appends the
	// history entry, guarded on the expected previous status. Returns
	// ErrStaleStatus when another writer got there first.
	ApplyTransition(ctx context.Context, order *models.Order, prev models.OrderStatus, entry *models.HistoryEntry) error

	EnsureIndexes() error
}
