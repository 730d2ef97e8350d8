// File: floreria/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floreria/config"
	"floreria/cron"
	"floreria/database"
	blockRepoPkg "floreria/database/repository/block"
	historyRepoPkg "floreria/database/repository/history"
	orderRepoPkg "floreria/database/repository/order"
	scheduleRepoPkg "floreria/database/repository/schedule"
	"floreria/handlers"
	"floreria/middleware"
	"floreria/routes"
	"floreria/services/order"
	"floreria/services/realtime"
	"floreria/services/scheduling"
	"floreria/services/tasks"
	"floreria/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	shopLoc, err := time.LoadLocation(config.AppConfig.ShopTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid shop time zone %q: %v", config.AppConfig.ShopTimezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	schedRepo := scheduleRepoPkg.NewMongoScheduleRepo()
	blkRepo := blockRepoPkg.NewMongoBlockRepo()
	ordRepo := orderRepoPkg.NewMongoOrderRepo()
	histRepo := historyRepoPkg.NewMongoHistoryRepo()

	if err := ordRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure order indexes: %v", err)
	}

	// services.
	invalidator := realtime.NewRedisInvalidator(utils.GetPubSubClient())

	scheduleService, err := scheduling.NewDefaultScheduleService(schedRepo, invalidator, shopLoc)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load schedule config: %v", err)
	}

	blockService := &scheduling.DefaultBlockService{
		Repo:        blkRepo,
		Schedule:    scheduleService,
		Invalidator: invalidator,
	}

	availabilityService := &scheduling.DefaultAvailabilityService{
		Schedule: scheduleService,
		Blocks:   blkRepo,
		Orders:   ordRepo,
	}

	orderService := &order.DefaultOrderService{
		Repo:         ordRepo,
		History:      histRepo,
		Availability: availabilityService,
		Schedule:     scheduleService,
		Invalidator:  invalidator,
		Reminders:    tasks.NewAsynqReminderScheduler(),
	}

	// Pickup-reminder worker.
	cron.InitReminderWorker(orderService)

	// Health monitoring.
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetPubSubClient()},
		database.MongoClient,
	)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Booking:  handlers.NewBookingHandler(availabilityService, orderService, logger),
		Orders:   handlers.NewOrderHandler(orderService, logger),
		Admin:    handlers.NewAdminHandler(blockService, scheduleService, logger),
		Realtime: handlers.NewRealtimeHandler(invalidator, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
