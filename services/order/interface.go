package order

import (
	"context"

	historyRepo "floreria/database/repository/history"
	orderRepo "floreria/database/repository/order"
	"floreria/models"
	"floreria/services/realtime"
	"floreria/services/scheduling"
)

// OrderService is the order-lifecycle surface exposed to handlers: admission-
// checked creation, staff transitions, customer cancellation, and reads.
type OrderService interface {
	CreateOrder(ctx context.Context, input models.OrderInput) (*models.Order, error)
	Transition(ctx context.Context, orderID string, actor models.ActorRef, target models.OrderStatus, reason string) (*models.Order, error)
	Cancel(ctx context.Context, orderID string, actor models.ActorRef) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter orderRepo.ListFilter) ([]models.Order, error)
	GetHistory(ctx context.Context, orderID string) ([]models.HistoryEntry, error)
}

// ReminderScheduler enqueues the pickup reminder for a freshly admitted order.
type ReminderScheduler interface {
	SchedulePickupReminder(ctx context.Context, o *models.Order) error
}

// DefaultOrderService implements OrderService.
type DefaultOrderService struct {
	Repo         orderRepo.OrderRepository
	History      historyRepo.HistoryRepository
	Availability scheduling.AvailabilityService
	Schedule     scheduling.ScheduleService
	Invalidator  realtime.Invalidator
	Reminders    ReminderScheduler // optional; nil skips reminder scheduling
}
