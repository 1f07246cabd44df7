package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/utils"
)

// RequestLogger logs every request once it has been handled. The level
// follows the response: errors for 5xx or gin errors, warnings for 4xx.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		device := utils.ParseUserAgent(c.Request.UserAgent())
		status := c.Writer.Status()

		fields := logrus.Fields{
			"status":      status,
			"method":      c.Request.Method,
			"path":        path,
			"ip":          utils.ClientIP(c),
			"latency_ms":  time.Since(start).Milliseconds(),
			"device_type": device.DeviceType,
			"browser":     device.Browser,
			"platform":    device.Platform,
		}
		if query != "" {
			fields["query"] = query
		}
		if device.IsBot {
			fields["is_bot"] = true
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}
