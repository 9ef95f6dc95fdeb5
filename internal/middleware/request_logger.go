package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns each request an id and logs the outcome with
// method, path, status and latency
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		logger := pkglogger.GetLogger().With().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Logger()

		switch {
		case c.Writer.Status() >= 500:
			logger.Error().Msg("request failed")
		case c.Writer.Status() >= 400:
			logger.Warn().Msg("request rejected")
		default:
			logger.Info().Msg("request completed")
		}
	}
}
