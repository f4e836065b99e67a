package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danmuck/seabridge/internal/observability"
)

const version = "0.1.0"

func (a *Admin) registerRoutes() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(a.Appeared).String(),
			"service": a.Name,
			"version": version,
		})
	})

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router.GET("/status", func(c *gin.Context) {
		if a.status == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no status source"})
			return
		}
		c.JSON(http.StatusOK, a.status())
	})

	a.router.GET("/log/level", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"level": zerolog.GlobalLevel().String()})
	})

	a.router.PUT("/log/level", func(c *gin.Context) {
		raw := c.Query("level")
		if !observability.SetLevel(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level: " + raw})
			return
		}
		c.JSON(http.StatusOK, gin.H{"level": zerolog.GlobalLevel().String()})
	})
}
