package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "datamind-backend/internal/auth"
	"datamind-backend/internal/export"
	"datamind-backend/internal/extraction"
	"datamind-backend/internal/history"
	"datamind-backend/internal/shared/config"
	"datamind-backend/internal/shared/metrics"
	"datamind-backend/internal/shared/server/middleware"
	"datamind-backend/internal/shared/server/respond"
)

// RouterDeps carries the constructed handlers into route registration.
type RouterDeps struct {
	Config            config.Config
	FirebaseAuth      middleware.FirebaseVerifier
	ExtractionHandler *extraction.Handler
	HistoryHandler    *history.Handler
	ExportHandler     *export.Handler
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.FirebaseAuth),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/extract" {
					return "EXTRACT"
				}
				return ""
			},
			Rules: map[string]middleware.RateLimitRule{
				// Model calls are the expensive path; everything else
				// is unmetered.
				"EXTRACT": {Rate: 0.5, Burst: 5},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.ExtractionHandler != nil {
		deps.ExtractionHandler.RegisterRoutes(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
