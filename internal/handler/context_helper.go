package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/doctrack-api/internal/middleware"
)

// actorID is empty for unauthenticated requests; the service rejects those.
func actorID(c *gin.Context) string {
	return middleware.ActorID(c)
}
