package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid"
	"github.com/rs/zerolog/log"
)

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RequestLogger tags every request with a nanoid and writes a structured
// access log entry once the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := gonanoid.Generate(requestIDAlphabet, 12)
		if err == nil {
			c.Set("requestID", requestID)
			c.Writer.Header().Set("X-Request-ID", requestID)
		}

		start := time.Now()
		c.Next()

		log.Info().
			Str("requestId", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
