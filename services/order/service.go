package order

import (
	"context"
	"fmt"

	orderRepo "floreria/database/repository/order"
	"floreria/models"
	"floreria/services/realtime"
	"floreria/services/scheduling"
	"floreria/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateOrder admits the pickup request and persists the order. The capacity
// check and the insert run inside one storage transaction, so concurrent
// bookings for the last open slot cannot both commit.
func (svc *DefaultOrderService) CreateOrder(ctx context.Context, input models.OrderInput) (*models.Order, error) {
	logger := utils.GetLogger()

	minute, err := models.ParseClock(input.PickupTime)
	if err != nil {
		return nil, &scheduling.ValidationError{Field: "pickupTime", Message: err.Error()}
	}

	// Fast-fail checks: slot offered, date blocked, slot blocked, capacity.
	// Capacity is re-counted authoritatively inside the insert transaction.
	if err := svc.Availability.IsBookable(ctx, input.PickupDate, minute); err != nil {
		return nil, err
	}

	pickupAt, err := models.CombineDateMinute(input.PickupDate, minute, svc.Schedule.Location())
	if err != nil {
		return nil, &scheduling.ValidationError{Field: "pickupDate", Message: err.Error()}
	}

	now := svc.Schedule.Now()
	o := &models.Order{
		ID:              uuid.New().String(),
		ContactName:     input.ContactName,
		ContactPhone:    input.ContactPhone,
		ReceiverName:    input.ReceiverName,
		PickupDate:      input.PickupDate,
		PickupMinute:    minute,
		PickupAt:        pickupAt,
		Status:          models.StatusPending,
		TotalAmount:     input.TotalAmount,
		PaymentProofURL: input.PaymentProofURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	entry := &models.HistoryEntry{
		ID:             uuid.New().String(),
		OrderID:        o.ID,
		Actor:          models.ActorRef{ID: "customer", Name: input.ContactName, Role: "customer"},
		PreviousStatus: "",
		NewStatus:      models.StatusPending,
		Note:           "order created",
		OccurredAt:     now,
	}

	cfg := svc.Schedule.Current()
	bucketStart, bucketEnd, err := svc.Availability.Bucket(input.PickupDate, minute)
	if err != nil {
		return nil, err
	}

	err = svc.Repo.CreateWithAdmission(ctx, o, entry, bucketStart, bucketEnd, cfg.CapacityPerSlot)
	switch err {
	case nil:
	case orderRepo.ErrCapacityExhausted:
		return nil, scheduling.NewSlotFull(input.PickupDate, input.PickupTime)
	case orderRepo.ErrTxnConflict:
		return nil, scheduling.NewAdmissionConflict()
	default:
		return nil, fmt.Errorf("order creation failed: %w", err)
	}

	logger.Info("order admitted",
		zap.String("orderId", o.ID),
		zap.String("pickupDate", o.PickupDate),
		zap.String("pickupTime", input.PickupTime))

	svc.Invalidator.Publish(ctx, realtime.TopicOrders)
	if svc.Reminders != nil {
		if err := svc.Reminders.SchedulePickupReminder(ctx, o); err != nil {
			logger.Warn("failed to schedule pickup reminder",
				zap.String("orderId", o.ID), zap.Error(err))
		}
	}
	return o, nil
}

// Transition validates and applies a staff-driven status change. The status
// write and its history entry commit together or not at all.
func (svc *DefaultOrderService) Transition(ctx context.Context, orderID string, actor models.ActorRef, target models.OrderStatus, reason string) (*models.Order, error) {
	if !models.ValidStatus(target) {
		return nil, &TransitionError{Code: CodeUnknownStatus, To: target, Message: "unrecognized target status"}
	}
	if target == models.StatusCancelled {
		return nil, &TransitionError{Code: CodeInvalidTransition, To: target, Message: "cancellation is customer-initiated; use the cancel operation"}
	}

	o, err := svc.Repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	if !CanTransition(prev, target) {
		return nil, NewInvalidTransition(prev, target, "transition not allowed")
	}

	now := svc.Schedule.Now()
	stamp := &models.ActionStamp{Actor: actor, At: now}
	note := ""

	switch target {
	case models.StatusAccepted:
		if prev == models.StatusAccepted {
			// Emergency takeover: legal only for a different actor, and its
			// audit note must be distinguishable from a first acceptance.
			if o.AcceptedBy != nil && o.AcceptedBy.Actor.ID == actor.ID {
				return nil, NewInvalidTransition(prev, target, "order already accepted by this actor")
			}
			prevName := ""
			if o.AcceptedBy != nil {
				prevName = o.AcceptedBy.Actor.Name
			}
			note = fmt.Sprintf("%s took over the order from the previously assigned %s", actor.Name, prevName)
		} else {
			note = "order accepted"
		}
		o.AcceptedBy = stamp
	case models.StatusFinished:
		o.FinishedBy = stamp
		note = "order finished and ready for pickup"
	case models.StatusDelivered:
		o.DeliveredBy = stamp
		note = "order delivered to the customer"
	case models.StatusRejected:
		if reason == "" {
			return nil, &TransitionError{Code: CodeReasonRequired, From: prev, To: target, Message: "rejection requires a reason"}
		}
		o.RejectedBy = stamp
		o.RejectionReason = reason
		note = "order rejected: " + reason
	}

	o.Status = target
	o.UpdatedAt = now
	entry := &models.HistoryEntry{
		ID:             uuid.New().String(),
		OrderID:        o.ID,
		Actor:          actor,
		PreviousStatus: prev,
		NewStatus:      target,
		Note:           note,
		OccurredAt:     now,
	}

	if err := svc.applyTransition(ctx, o, prev, entry); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel is the customer-initiated exit, legal only while the order is still
// awaiting staff. Once accepted, work has started and cancellation is closed.
func (svc *DefaultOrderService) Cancel(ctx context.Context, orderID string, actor models.ActorRef) (*models.Order, error) {
	o, err := svc.Repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	if prev != models.StatusPending {
		return nil, NewInvalidTransition(prev, models.StatusCancelled, "only pending orders can be cancelled")
	}

	now := svc.Schedule.Now()
	o.Status = models.StatusCancelled
	o.RejectionReason = "cancelled by customer"
	o.UpdatedAt = now
	entry := &models.HistoryEntry{
		ID:             uuid.New().String(),
		OrderID:        o.ID,
		Actor:          actor,
		PreviousStatus: prev,
		NewStatus:      models.StatusCancelled,
		Note:           "order cancelled by customer",
		OccurredAt:     now,
	}

	if err := svc.applyTransition(ctx, o, prev, entry); err != nil {
		return nil, err
	}
	return o, nil
}

func (svc *DefaultOrderService) applyTransition(ctx context.Context, o *models.Order, prev models.OrderStatus, entry *models.HistoryEntry) error {
	err := svc.Repo.ApplyTransition(ctx, o, prev, entry)
	switch err {
	case nil:
	case orderRepo.ErrStaleStatus:
		return NewInvalidTransition(prev, o.Status, "order changed concurrently; refresh and retry")
	default:
		return fmt.Errorf("transition failed: %w", err)
	}

	utils.GetLogger().Info("order transitioned",
		zap.String("orderId", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(o.Status)),
		zap.String("actor", entry.Actor.ID))
	svc.Invalidator.Publish(ctx, realtime.TopicOrders)
	return nil
}

func (svc *DefaultOrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return svc.Repo.GetByID(orderID)
}

func (svc *DefaultOrderService) ListOrders(ctx context.Context, filter orderRepo.ListFilter) ([]models.Order, error) {
	return svc.Repo.List(filter)
}

func (svc *DefaultOrderService) GetHistory(ctx context.Context, orderID string) ([]models.HistoryEntry, error) {
	return svc.History.ListFor(orderID)
}
