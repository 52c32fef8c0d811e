package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// PingChecker adapts a ping function such as (*sql.DB).PingContext.
type PingChecker func(ctx context.Context) error

func (p PingChecker) Check(ctx context.Context) error {
	return p(ctx)
}

type checkStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RegisterOps mounts health, readiness and Prometheus endpoints.
func RegisterOps(r *gin.Engine, checkers map[string]HealthChecker) {
	r.GET("/health", healthHandler(checkers))
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func healthHandler(checkers map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		checks := make(map[string]checkStatus, len(checkers))
		for name, checker := range checkers {
			if err := checker.Check(ctx); err != nil {
				status = "unhealthy"
				checks[name] = checkStatus{Status: "unhealthy", Message: err.Error()}
				continue
			}
			checks[name] = checkStatus{Status: "healthy"}
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
			"checks":    checks,
		})
	}
}
