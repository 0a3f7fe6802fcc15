package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"study-spotter-backend/config"
	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. It also registers the
// handler's reservation and refresh hooks, so it must be called once per
// Deps.
func NewRouter(cfg *config.ServerConfig, d Deps) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logging.For("http")))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))

	if d.Cache == nil {
		d.Cache = mw.NewResponseCache(cfg.CacheTTL)
	}
	handler := NewHandler(d)
	d.Rooms.OnReserved(handler.onReserved)
	d.Locations.OnRefresh(handler.flushCache)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, mw.ClientKey(cfg.RequestIPHeader))
	caching := d.Cache.Middleware()

	r.GET("/healthz", handler.HealthCheck)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/locations", caching, handler.GetLocations)
		api.POST("/locations/refresh", handler.RefreshLocations)
		api.GET("/locations/export.csv", caching, handler.ExportLocationsCSV)
		api.GET("/locations/:id/history", caching, handler.GetLocationHistory)

		api.GET("/rooms", handler.GetRooms)
		api.POST("/rooms/:room_id/select", handler.SelectRoom)

		api.POST("/reservation", handler.SubmitReservation)
		api.DELETE("/reservation", handler.CancelReservation)
		api.GET("/reservations", handler.ListReservations)
		api.GET("/reservations/:id", handler.GetReservation)

		if d.Store != nil {
			api.GET("/subscriptions", handler.GetSubscription)
			api.PUT("/subscriptions", handler.PutSubscription)
			api.DELETE("/subscriptions", handler.DeleteSubscription)
		}
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
