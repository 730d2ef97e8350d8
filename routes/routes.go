package routes

import (
	"net/http"

	"floreria/handlers"
	"floreria/middleware"
	"floreria/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle carries the constructed handlers into route registration.
type HandlerBundle struct {
	Booking  *handlers.BookingHandler
	Orders   *handlers.OrderHandler
	Admin    *handlers.AdminHandler
	Realtime *handlers.RealtimeHandler
}

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Actor-Id", "X-Actor-Name", "X-Actor-Role"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	RegisterBookingRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterHealthRoute(r)
}

// RegisterBookingRoutes sets up the customer-facing booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	booking := r.Group("/api/booking")
	{
		booking.GET("/slots", hb.Booking.GetSlots)
		booking.GET("/check", hb.Booking.CheckSlot)
		booking.POST("/orders", hb.Booking.CreateOrder)
	}
}

// RegisterOrderRoutes sets up the staff order-management endpoints.
// Transitions require the forwarded actor identity.
func RegisterOrderRoutes(r *gin.Engine, hb *HandlerBundle) {
	orders := r.Group("/api/orders")
	{
		orders.GET("", hb.Orders.ListOrders)
		orders.GET("/:id", hb.Orders.GetOrder)
		orders.GET("/:id/history", hb.Orders.GetHistory)
		orders.POST("/:id/cancel", hb.Orders.CancelOrder)

		staff := orders.Group("")
		staff.Use(middleware.ActorMiddleware())
		staff.POST("/:id/transition", hb.Orders.TransitionOrder)
	}
}

// RegisterAdminRoutes sets up the back-office closure and schedule endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.ActorMiddleware())
	{
		admin.POST("/blocks", hb.Admin.AddBlock)
		admin.GET("/blocks", hb.Admin.ListBlocks)
		admin.DELETE("/blocks/:id", hb.Admin.RemoveBlock)
		admin.GET("/schedule", hb.Admin.GetSchedule)
		admin.PUT("/schedule", hb.Admin.UpdateSchedule)
	}
}

// RegisterRealtimeRoutes sets up the invalidation subscription feed.
func RegisterRealtimeRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.GET("/api/realtime/subscribe", hb.Realtime.Subscribe)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Ok() && !status.CheckedAt.IsZero() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}
