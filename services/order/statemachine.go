package order

import "floreria/models"

// AllowedTransitions represents the order lifecycle as code:
// pendiente → aceptado → terminado → entregado, with rechazado reachable from
// every non-terminal state and cancelado only from pendiente.
//
// aceptado → aceptado is deliberate: a second staff member may take over an
// order already accepted by someone else (emergency takeover). It resolves
// last-write-wins and is logged distinctly; only re-acceptance by the same
// actor is rejected.
var AllowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:  {models.StatusAccepted, models.StatusRejected, models.StatusCancelled},
	models.StatusAccepted: {models.StatusAccepted, models.StatusFinished, models.StatusRejected},
	models.StatusFinished: {models.StatusDelivered, models.StatusRejected},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to models.OrderStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
