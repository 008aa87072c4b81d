package api

import (
	"time"

	"github.com/Domenick1991/airport/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger writes one API line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogAPI(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
