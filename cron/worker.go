package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"floreria/config"
	"floreria/models"
	"floreria/services/order"
	"floreria/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async pickup-reminder worker in background.
func InitReminderWorker(orderSvc order.OrderService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePickupReminder, handlePickupReminderTask(orderSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handlePickupReminderTask(orderSvc order.OrderService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.PickupReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		// The reminder is not unscheduled on cancel/reject; re-check the order
		// and skip silently when it no longer holds its slot.
		o, err := orderSvc.GetOrder(ctx, p.OrderID)
		if err != nil {
			log.Printf("[ReminderHandler] Could not load order %s: %v", p.OrderID, err)
			return nil
		}
		if !o.Status.Active() || o.Status == models.StatusDelivered {
			return nil
		}

		// Actual delivery of the nudge (SMS/push) is an external collaborator;
		// the subsystem's contract ends at raising it on time.
		log.Printf("[ReminderHandler] Pickup reminder due for order %s (%s, pickup %s)",
			o.ID, o.ContactName, o.PickupAt.Format(time.RFC3339))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
