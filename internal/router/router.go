package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/verifai/proctor-backend/internal/config"
	"github.com/verifai/proctor-backend/internal/handler"
	"github.com/verifai/proctor-backend/internal/middleware"
	"github.com/verifai/proctor-backend/internal/response"
	"github.com/verifai/proctor-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Exam    *handler.ExamHandler
	Admin   *handler.AdminHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireStudentJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Exam Group (Student JWT + Single Device) ───────────────────
	examAPI := router.Group("/api/v1/exam")
	examAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		examAPI.POST("/submit", handlers.Exam.SubmitExam)
		examAPI.GET("/:exam_id/details", handlers.Exam.GetExamDetails)
	}

	// ─── 3. Internal Group (Shared Secret) ─────────────────────────────
	// Service-to-service endpoints for the bouncer; not reachable with
	// student or admin tokens.
	internalAPI := router.Group("/api/v1/exam/internal")
	internalAPI.Use(middleware.RequireInternalKey(cfg.InternalAPIKey))
	{
		internalAPI.POST("/update-baseline", handlers.Exam.UpdateBaseline)
		internalAPI.POST("/events", handlers.Exam.ReportEvent)
	}

	// ─── 4. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Account management
		adminAPI.GET("/users", handlers.Admin.ListUsers)
		adminAPI.POST("/users", handlers.Admin.CreateUser)
		adminAPI.PATCH("/users/:id/status", handlers.Admin.UpdateUserStatus)

		// Integrity log views
		adminAPI.GET("/integrity-logs", handlers.Admin.ListIntegrityLogs)
		adminAPI.GET("/students/:id/integrity-logs", handlers.Admin.ListStudentIntegrityLogs)
	}

	// ─── 5. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/violations/stream", handlers.Monitor.ViolationStream)
	}

	return router
}
