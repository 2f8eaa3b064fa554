package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/doctrack-api/internal/service"
	"github.com/noah-isme/doctrack-api/pkg/middleware/requestid"
)

// Audit copies the request id and client address onto the request context so
// activity rows written further down carry them.
func Audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := service.RequestMeta{
			RequestID: requestid.Value(c),
			IPAddress: c.ClientIP(),
		}
		c.Request = c.Request.WithContext(service.ContextWithRequestMeta(c.Request.Context(), meta))
		c.Next()
	}
}
