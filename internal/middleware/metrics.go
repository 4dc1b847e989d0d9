package middleware

import (
	"time"

	"OWS_Community/internal/pkg"

	"github.com/gin-gonic/gin"
)

func Metrics(m *pkg.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), start)
	}
}
