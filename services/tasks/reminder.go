package tasks

import (
	"context"
	"encoding/json"
	"time"

	"floreria/config"
	"floreria/models"

	"github.com/hibiken/asynq"
)

const TypePickupReminder = "pickup:reminder"

// PickupReminderPayload is the task body for a scheduled pickup nudge.
type PickupReminderPayload struct {
	OrderID     string    `json:"orderId"`
	ContactName string    `json:"contactName"`
	PickupAt    time.Time `json:"pickupAt"`
}

// NewPickupReminderTask builds the asynq task fired at the given time.
func NewPickupReminderTask(payload PickupReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePickupReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues pickup reminders on the Redis-backed queue.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

// NewAsynqReminderScheduler constructs the scheduler from app config.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	return &AsynqReminderScheduler{Client: client}
}

// SchedulePickupReminder enqueues a reminder at pickup minus the configured
// lead time. Orders picked up sooner than the lead time get no reminder.
func (s *AsynqReminderScheduler) SchedulePickupReminder(ctx context.Context, o *models.Order) error {
	fireAt := o.PickupAt.Add(-time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute)
	if !fireAt.After(time.Now()) {
		return nil
	}

	payload := PickupReminderPayload{
		OrderID:     o.ID,
		ContactName: o.ContactName,
		PickupAt:    o.PickupAt,
	}
	task, opts, err := NewPickupReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	return err
}
