package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/handler"
	"github.com/admitra/portal-backend/internal/middleware"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Exam        *handler.ExamHandler
	Profile     *handler.ProfileHandler
	QuestionSet *handler.QuestionSetHandler
	Result      *handler.ResultHandler
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
		auth.POST("/applicant/register", handlers.Auth.RegisterApplicant)
		auth.POST("/applicant/login", handlers.Auth.LoginApplicant)
		auth.POST("/staff/login", handlers.Auth.LoginStaff)

		auth.POST("/applicant/logout", middleware.RequireApplicantJWT(authService), handlers.Auth.LogoutApplicant)
	}

	// ─── 2. Department Catalogue (Public, Cached) ──────────────────────
	departments := router.Group("/api/v1/departments")
	departments.Use(middleware.CacheControl(300))
	{
		departments.GET("", handlers.Profile.ListDepartments)
	}

	// ─── 3. Applicant Group (JWT + Single Device) ──────────────────────
	applicantAPI := router.Group("/api/v1")
	applicantAPI.Use(
		middleware.RequireApplicantJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		applicantAPI.GET("/profile", handlers.Profile.GetProfile)
		applicantAPI.PUT("/profile", handlers.Profile.UpdateProfile)

		applicantAPI.POST("/exam/attempts", handlers.Exam.StartAttempt)
		applicantAPI.GET("/exam/attempts", handlers.Exam.GetActiveAttempt)
		applicantAPI.GET("/exam/attempts/:id", handlers.Exam.GetAttempt)
		applicantAPI.PATCH("/exam/attempts/:id/answers", handlers.Exam.SaveAnswers)
		applicantAPI.POST("/exam/attempts/:id/submit", handlers.Exam.SubmitAttempt)
	}

	// ─── 4. Staff Group (JWT + RBAC) ───────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		// Question bank authoring is admin only.
		staffAPI.POST("/question-sets",
			middleware.RequireStaffRole(model.RoleAdmin),
			handlers.QuestionSet.CreateQuestionSet)
		staffAPI.POST("/question-sets/:id/publish",
			middleware.RequireStaffRole(model.RoleAdmin),
			handlers.QuestionSet.PublishQuestionSet)

		// Review endpoints are open to both roles.
		staffAPI.GET("/question-sets", handlers.QuestionSet.ListQuestionSets)
		staffAPI.GET("/question-sets/:id", handlers.QuestionSet.GetQuestionSet)

		staffAPI.GET("/results", handlers.Result.ListResults)
		staffAPI.GET("/results/live", handlers.Result.LiveResultsSSE)
		staffAPI.GET("/results/:id", handlers.Result.GetResult)
		staffAPI.GET("/stats", handlers.Result.GetStats)
	}

	return router
}
