package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/cache"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
)

// RateLimits configures the fixed-window limits applied in the router.
type RateLimits struct {
	Window  time.Duration
	Max     int
	AuthMax int
}

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	examHandler    *ExamHandler
	authMiddleware *AuthMiddleware

	serviceManager services.ServiceManager
	limiter        *cache.CacheHelper
	limits         RateLimits
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenService,
	userRepo repositories.UserRepository,
	limiter *cache.CacheHelper,
	limits RateLimits,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), serviceManager.User(), logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		examHandler:    NewExamHandler(serviceManager.Exam(), serviceManager.Report(), logger),
		authMiddleware: NewAuthMiddleware(tokens, userRepo),
		serviceManager: serviceManager,
		limiter:        limiter,
		limits:         limits,
	}
}

// SetupRoutes registers the full API surface.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(hm.limiter, "global", hm.limits.Max, hm.limits.Window))

	// Auth routes get the tighter limit on top of the global one.
	authRoutes := api.Group("/auth")
	authRoutes.Use(RateLimitMiddleware(hm.limiter, "auth", hm.limits.AuthMax, hm.limits.Window))
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/verify-otp", hm.authHandler.VerifyOTP)
		authRoutes.POST("/request-otp", hm.authHandler.RequestOTP)

		authenticated := authRoutes.Group("")
		authenticated.Use(hm.authMiddleware.Authenticate())
		{
			authenticated.POST("/register", hm.authHandler.Register)
			authenticated.GET("/profile", hm.authHandler.GetProfile)
			authenticated.PUT("/profile", hm.authHandler.UpdateProfile)
			authenticated.POST("/change-password", hm.authHandler.ChangePassword)
			authenticated.POST("/refresh-token", hm.authHandler.RefreshToken)
			authenticated.POST("/logout", hm.authHandler.Logout)
		}
	}

	users := api.Group("/users")
	users.Use(hm.authMiddleware.Authenticate())
	{
		users.POST("", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.userHandler.CreateUser)
		users.GET("", hm.userHandler.ListUsers)
		users.GET("/archived", hm.authMiddleware.RequireRole(), hm.userHandler.ListArchivedUsers)
		users.GET("/my-students", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.userHandler.MyStudents)
		users.GET("/:id", hm.userHandler.GetUser)
		users.PUT("/:id", hm.userHandler.UpdateUser)
		users.DELETE("/:id", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.userHandler.ArchiveUser)
		users.POST("/:id/restore", hm.authMiddleware.RequireRole(), hm.userHandler.RestoreUser)
		users.POST("/:id/reset-password", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.userHandler.ResetPassword)
	}

	exams := api.Group("/exams")
	{
		// Code preview is reachable with or without a token.
		exams.GET("/code/:examCode", hm.authMiddleware.OptionalAuthenticate(), hm.examHandler.GetExamByCode)

		protected := exams.Group("")
		protected.Use(hm.authMiddleware.Authenticate())
		{
			protected.POST("", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.CreateExam)
			protected.GET("", hm.examHandler.ListExams)
			protected.POST("/join", hm.authMiddleware.RequireRole(models.RoleStudent), hm.examHandler.JoinExam)
			protected.GET("/:id", hm.examHandler.GetExam)
			protected.PUT("/:id", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.UpdateExam)
			protected.DELETE("/:id", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.DeleteExam)
			protected.GET("/:id/statistics", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.GetStatistics)
			protected.GET("/:id/export", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.ExportScores)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Status:  "error",
			Message: "Route not found",
		})
	})
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "exam-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
