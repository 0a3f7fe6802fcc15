package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /healthz. The database is pinged when a store is
// configured.
func (h *Handler) HealthCheck(c *gin.Context) {
	_, updated := h.locations.Latest()
	body := gin.H{"status": "healthy", "service": "study-spotter"}
	if !updated.IsZero() {
		body["lastRefresh"] = updated
	}

	if h.store != nil && h.store.DB() != nil {
		sqlDB, err := h.store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "database ping failed",
				"error":   err.Error(),
			})
			return
		}
		body["database"] = "connected"
	}
	c.JSON(http.StatusOK, body)
}
