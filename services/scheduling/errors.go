package scheduling

import (
	"errors"
	"fmt"
)

// Admission error codes. All are user-correctable except admissionConflict,
// which asks the caller to retry against the now-current slot list.
const (
	CodeDateBlocked       = "dateBlocked"
	CodeSlotBlocked       = "slotBlocked"
	CodeSlotFull          = "slotFull"
	CodeSlotNotOffered    = "slotNotOffered"
	CodeAdmissionConflict = "admissionConflict"
)

// AdmissionError is a typed rejection of a booking request. It is a result,
// not a fault: nothing was reserved, nothing was written.
type AdmissionError struct {
	Code    string
	Message string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable reports whether the caller should re-check availability and retry.
func (e *AdmissionError) Retryable() bool {
	return e.Code == CodeAdmissionConflict
}

func NewDateBlocked(date string) error {
	return &AdmissionError{Code: CodeDateBlocked, Message: fmt.Sprintf("the shop is closed on %s", date)}
}

func NewSlotBlocked(date, clock string) error {
	return &AdmissionError{Code: CodeSlotBlocked, Message: fmt.Sprintf("pickup at %s on %s is blocked", clock, date)}
}

func NewSlotFull(date, clock string) error {
	return &AdmissionError{Code: CodeSlotFull, Message: fmt.Sprintf("pickup slot %s on %s is fully booked", clock, date)}
}

func NewSlotNotOffered(date, clock string) error {
	return &AdmissionError{Code: CodeSlotNotOffered, Message: fmt.Sprintf("pickup at %s on %s is not offered", clock, date)}
}

func NewAdmissionConflict() error {
	return &AdmissionError{Code: CodeAdmissionConflict, Message: "another booking won the slot; refresh availability and retry"}
}

// AsAdmissionError unwraps err into an *AdmissionError if it is one.
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ValidationError rejects a malformed admin input (bad clock range, bad date)
// before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConfigError rejects a schedule-config edit that violates an invariant
// (openTime >= closeTime, non-positive interval or capacity).
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schedule config invariant violated on %s: %s", e.Field, e.Message)
}

// ErrBlockNotFound is returned when removing a block that does not exist.
var ErrBlockNotFound = errors.New("block not found")
