package models

import "time"

// HistoryEntry is one append-only audit record per order mutation.
// Entries are never updated or deleted.
type HistoryEntry struct {
	ID             string      `bson:"id" json:"id"`
	OrderID        string      `bson:"order_id" json:"orderId"`
	Actor          ActorRef    `bson:"actor" json:"actor"`
	PreviousStatus OrderStatus `bson:"previous_status" json:"previousStatus"`
	NewStatus      OrderStatus `bson:"new_status" json:"newStatus"`
	Note           string      `bson:"note" json:"note"`
	OccurredAt     time.Time   `bson:"occurred_at" json:"occurredAt"`
}
