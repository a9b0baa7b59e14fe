// Package handler wires the HTTP surface: a liveness endpoint used by
// external uptime probes. The purchase flow itself lives on the chat side,
// not here.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coupon-shop-bot/internal/handler/middleware"
	"coupon-shop-bot/internal/pkg/config"
)

func NewRouter(engine *gin.Engine, cfg config.Config) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
}

func setupRoutes(engine *gin.Engine) {
	engine.GET("/", healthCheck)
	engine.GET("/health", healthCheck)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Bot is running",
	})
}
