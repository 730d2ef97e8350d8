package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"floreria/services/realtime"
	"floreria/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RealtimeHandler bridges the invalidation topics to browser sessions over
// Server-Sent Events. Events carry only the topic name; clients re-query.
type RealtimeHandler struct {
	Invalidator realtime.Invalidator
	Logger      *zap.Logger
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(inv realtime.Invalidator, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{Invalidator: inv, Logger: logger}
}

// Subscribe streams invalidation signals for ?topics=blocks,orders,config
// (default: all three) until the client disconnects.
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	topics := []realtime.Topic{realtime.TopicBlocks, realtime.TopicOrders, realtime.TopicConfig}
	if q := c.Query("topics"); q != "" {
		topics = topics[:0]
		for _, name := range strings.Split(q, ",") {
			t := realtime.Topic(strings.TrimSpace(name))
			if !realtime.ValidTopic(t) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown topic %q", name)})
				return
			}
			topics = append(topics, t)
		}
	}

	signals, stop := h.Invalidator.Subscribe(c.Request.Context(), topics...)
	defer stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	heartbeat := time.NewTicker(utils.SSEHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case topic, ok := <-signals:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: invalidate\ndata: %s\n\n", topic)
			c.Writer.Flush()
		}
	}
}
