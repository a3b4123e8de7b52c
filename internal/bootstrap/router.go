package bootstrap

import (
	"log"
	"net/http"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/middleware"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
	"github.com/mtconnors79/mindwell-app-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder metrics.Recorder,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Prometheus metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Rate limiting
	rateLimiters := setupRateLimiting(cfg, rateLimitRedisClient)

	setupAllRoutes(r, cfg, h, rateLimiters)

	logServerStartup(cfg)

	return r
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Account routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", rateLimiters.publicToken, h.auth.Register)
		auth.POST("/login", rateLimiters.publicToken, h.auth.Login)
	}

	// Public token routes. The invite token is the only credential here,
	// so both routes sit behind the public limiter.
	r.GET("/care-circle/invite/:token", rateLimiters.publicToken, h.careCircle.PreviewInvite)
	r.POST("/care-circle/decline/:token", rateLimiters.publicToken, h.careCircle.Decline)

	// Authenticated routes
	authed := r.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		circle := authed.Group("/care-circle")
		{
			circle.POST("/invite", rateLimiters.invite, h.careCircle.Invite)
			circle.GET("", h.careCircle.List)
			circle.POST("/accept/:token", h.careCircle.Accept)
			circle.PUT("/:id/tier", h.careCircle.ChangeTier)
			circle.DELETE("/:id", h.careCircle.Revoke)
			circle.POST("/:id/resend", rateLimiters.invite, h.careCircle.Resend)
			circle.GET("/audit/:connectionID", h.careCircle.AuditHistory)
			circle.GET("/access-log", h.careCircle.RecentAccess)
			circle.GET("/activity", h.careCircle.MyActivity)

			shared := circle.Group("/shared/:patientId")
			{
				shared.GET("/summary", h.shared.Summary)
				shared.GET("/moods", h.shared.Moods)
				shared.GET("/checkins", h.shared.CheckIns)
				shared.GET("/trends", h.shared.Trends)
				shared.GET("/export", h.shared.Export)
			}
		}

		authed.POST("/checkins", h.checkin.Create)
		authed.GET("/checkins", h.checkin.List)
	}
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("MindWell server starting on %s", cfg.ServerAddr)
	log.Printf("Invite links served under: %s/care-circle/invite/", cfg.BaseURL)
	log.Printf("Default user: demo@mindwell.local (check logs for password if first run)")
}
