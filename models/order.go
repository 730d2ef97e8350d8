package models

import "time"

// OrderStatus is the closed set of order lifecycle states. Unknown values are
// rejected at the boundary, never stored.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pendiente"
	StatusAccepted  OrderStatus = "aceptado"
	StatusFinished  OrderStatus = "terminado"
	StatusDelivered OrderStatus = "entregado"
	StatusRejected  OrderStatus = "rechazado"
	StatusCancelled OrderStatus = "cancelado"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusFinished, StatusDelivered, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

// Active reports whether the order still holds its pickup slot.
// Rejected and cancelled orders free their slot.
func (s OrderStatus) Active() bool {
	return s != StatusRejected && s != StatusCancelled
}

// Order represents a confirmed pickup order.
type Order struct {
	ID              string       `bson:"id" json:"id"`                                             // Unique order identifier (UUID)
	ContactName     string       `bson:"contact_name" json:"contactName"`                          // Customer placing the order
	ContactPhone    string       `bson:"contact_phone" json:"contactPhone"`
	ReceiverName    string       `bson:"receiver_name" json:"receiverName"`                        // Person picking up the flowers
	PickupDate      string       `bson:"pickup_date" json:"pickupDate"`                            // "2006-01-02" in the shop time zone
	PickupMinute    int          `bson:"pickup_minute" json:"pickupMinute"`                        // minutes from midnight
	PickupAt        time.Time    `bson:"pickup_at" json:"pickupAt"`                                // combined timestamp, shop time zone
	Status          OrderStatus  `bson:"status" json:"status"`
	TotalAmount     float64      `bson:"total_amount" json:"totalAmount"`
	PaymentProofURL string       `bson:"payment_proof_url,omitempty" json:"paymentProofUrl,omitempty"` // opaque, never inspected
	AcceptedBy      *ActionStamp `bson:"accepted_by,omitempty" json:"acceptedBy,omitempty"`
	FinishedBy      *ActionStamp `bson:"finished_by,omitempty" json:"finishedBy,omitempty"`
	DeliveredBy     *ActionStamp `bson:"delivered_by,omitempty" json:"deliveredBy,omitempty"`
	RejectedBy      *ActionStamp `bson:"rejected_by,omitempty" json:"rejectedBy,omitempty"`
	RejectionReason string       `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"` // set only on reject/cancel
	CreatedAt       time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updatedAt"`
}

// OrderInput is the finalized payload handed over by the cart collaborator.
// Catalog stock was validated before this subsystem is invoked.
type OrderInput struct {
	ContactName     string  `json:"contactName" binding:"required"`
	ContactPhone    string  `json:"contactPhone" binding:"required"`
	ReceiverName    string  `json:"receiverName"`
	TotalAmount     float64 `json:"totalAmount"`
	PaymentProofURL string  `json:"paymentProofUrl"`
	PickupDate      string  `json:"pickupDate" binding:"required"` // "2006-01-02"
	PickupTime      string  `json:"pickupTime" binding:"required"` // "15:04"
}
