package middleware

import (
	"net/http"

	"floreria/models"

	"github.com/gin-gonic/gin"
)

// ActorContextKey is where the staff actor lands in the gin context.
const ActorContextKey = "actor"

// ActorMiddleware extracts the opaque staff identity forwarded by the
// authentication layer. Authentication itself happens upstream; this service
// only records who acted.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Actor-Id")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
			return
		}
		actor := models.ActorRef{
			ID:   id,
			Name: c.GetHeader("X-Actor-Name"),
			Role: c.GetHeader("X-Actor-Role"),
		}
		if actor.Name == "" {
			actor.Name = actor.ID
		}
		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// ActorFrom fetches the actor placed by ActorMiddleware.
func ActorFrom(c *gin.Context) (models.ActorRef, bool) {
	v, ok := c.Get(ActorContextKey)
	if !ok {
		return models.ActorRef{}, false
	}
	actor, ok := v.(models.ActorRef)
	return actor, ok
}
