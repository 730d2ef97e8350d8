package order

import (
	"errors"
	"fmt"

	"floreria/models"
)

// Transition error codes.
const (
	CodeInvalidTransition = "invalidTransition"
	CodeReasonRequired    = "reasonRequired"
	CodeUnknownStatus     = "unknownStatus"
)

// TransitionError is a typed rejection of a state-machine move. The order is
// left untouched: no status change, no history entry.
type TransitionError struct {
	Code    string
	From    models.OrderStatus
	To      models.OrderStatus
	Message string
}

func (e *TransitionError) Error() string {
	if e.From != "" || e.To != "" {
		return fmt.Sprintf("%s: %s (%s -> %s)", e.Code, e.Message, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidTransition builds the standard illegal-move error.
func NewInvalidTransition(from, to models.OrderStatus, msg string) error {
	return &TransitionError{Code: CodeInvalidTransition, From: from, To: to, Message: msg}
}

// AsTransitionError unwraps err into a *TransitionError if it is one.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
