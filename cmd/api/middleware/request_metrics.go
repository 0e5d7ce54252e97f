package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cgm-ai-eval/cmd/api/metrics"
)

// RequestMetrics 는 라우트 패턴 단위로 요청 수를 센다. 매칭되지 않은 경로는 "unmatched" 로 묶는다.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
