package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/handler"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Journey *handler.JourneyHandler
	Session *handler.SessionHandler
	Admin   *handler.AdminHandler
	WS      *handler.WSHandler
}

// catalogMaxAge is the client cache lifetime for the journey list.
const catalogMaxAge = 300

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil, in which case login is not rate limited.
func SetupRouter(
	tokens middleware.TokenValidator,
	loginLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the logger and every response see it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	auth := api.Group("/auth")
	{
		login := []gin.HandlerFunc{handlers.Auth.Login}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{loginLimiter.Middleware()}, login...)
		}
		auth.POST("/login", login...)
	}

	// ─── 1. Authenticated Group (any role) ─────────────────────────────
	authed := api.Group("")
	authed.Use(middleware.RequireAuth(tokens))
	{
		authed.POST("/auth/logout", handlers.Auth.Logout)
		authed.GET("/auth/me", middleware.NoStore(), handlers.Auth.Me)
		authed.GET("/journeys", middleware.CacheControl(catalogMaxAge), handlers.Journey.ListJourneys)
		authed.GET("/atlas", middleware.RequireRole(model.RoleStudent), middleware.NoStore(), handlers.Journey.GetAtlas)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	student := api.Group("/student")
	student.Use(middleware.RequireAuth(tokens), middleware.RequireRole(model.RoleStudent), middleware.NoStore())
	{
		student.POST("/journeys/:journey_id/embark", handlers.Session.Embark)

		student.GET("/active-session", handlers.Session.GetActiveSession)
		student.GET("/sessions/:session_id/waypoint", handlers.Session.GetWaypoint)
		student.GET("/sessions/:session_id/logs", handlers.Session.GetLogs)
		student.POST("/sessions/:session_id/answers", handlers.Session.SubmitAnswer)
		student.POST("/sessions/:session_id/overlook", handlers.Session.ReachOverlook)
		student.POST("/sessions/:session_id/resume", handlers.Session.ResumeAscent)
		student.POST("/sessions/:session_id/sign-off", handlers.Session.SignOff)
		student.POST("/sessions/:session_id/distress", handlers.Session.MarkDistress)
		student.DELETE("/sessions/:session_id/distress", handlers.Session.ClearDistress)
	}

	// ─── 3. Admin Group ────────────────────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(tokens), middleware.RequireRole(model.RoleAdmin), middleware.NoStore())
	{
		admin.GET("/map", handlers.Admin.GetExpeditionMap)
		admin.GET("/analytics", handlers.Admin.GetAnalytics)
		admin.GET("/travelers/:session_id", handlers.Admin.GetTraveler)
		admin.POST("/travelers/:session_id/distress", handlers.Admin.MarkDistress)
		admin.DELETE("/travelers/:session_id/distress", handlers.Admin.ClearDistress)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	// Browsers cannot set headers on the upgrade request, so the token
	// travels as ?token=.
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireWSAuth(tokens), middleware.RequireRole(model.RoleAdmin))
	{
		wsGroup.GET("/admin/expeditions", handlers.WS.ExpeditionStream)
	}

	return router
}
