package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
				c.Abort()
			}
		}()
		c.Next()
	}
}
