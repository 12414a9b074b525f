package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/auth"
	"github.com/collegehub-edu/portal-service/internal/cache"
	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

// HandlerManager owns all HTTP handlers and the auth middleware.
type HandlerManager struct {
	Auth      *AuthHandler
	Approval  *ApprovalHandler
	Timetable *TimetableHandler
	Email     *EmailHandler

	jwtAuth *JWTAuthMiddleware
	limiter *cache.RateLimiter
	repo    repositories.Repository
	logger  utils.Logger
}

type HandlerManagerDeps struct {
	Services services.ServiceManager
	Repo     repositories.Repository
	Tokens   *auth.TokenService
	Limiter  *cache.RateLimiter
	Config   *config.Config
	Logger   utils.Logger
}

func NewHandlerManager(deps HandlerManagerDeps) *HandlerManager {
	return &HandlerManager{
		Auth:      NewAuthHandler(deps.Services.Auth(), deps.Config.Auth, deps.Logger),
		Approval:  NewApprovalHandler(deps.Services.Approval(), deps.Logger),
		Timetable: NewTimetableHandler(deps.Services.Timetable(), deps.Logger),
		Email:     NewEmailHandler(deps.Services.Mailer(), deps.Logger),
		jwtAuth:   NewJWTAuthMiddleware(deps.Tokens, deps.Repo.User()),
		limiter:   deps.Limiter,
		repo:      deps.Repo,
		logger:    deps.Logger,
	}
}

func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	authRequired := hm.jwtAuth.AuthMiddleware()
	staffOnly := hm.jwtAuth.RequireRole(models.StaffRoles...)

	v1 := router.Group("/api/v1")

	v1.GET("/health", hm.Health)

	authRoutes := v1.Group("/auth")
	authRoutes.Use(RateLimitMiddleware(hm.limiter, hm.logger))
	{
		authRoutes.POST("/register", hm.Auth.Register)
		authRoutes.POST("/login", hm.Auth.Login)
		authRoutes.POST("/refresh", hm.Auth.Refresh)
		authRoutes.POST("/logout", hm.Auth.Logout)

		authRoutes.GET("/me", authRequired, hm.Auth.Me)
		authRoutes.POST("/reset-password", authRequired, hm.Auth.ResetPassword)
	}

	emailMgmt := v1.Group("/email-management")
	{
		// Public probe used by the registration form.
		emailMgmt.GET("/check-status", hm.Approval.CheckStatus)

		staff := emailMgmt.Group("", authRequired, staffOnly)
		{
			staff.POST("/add", hm.Approval.Add)
			staff.POST("/bulk-add", hm.Approval.BulkAdd)
			staff.POST("/bulk-upload", hm.Approval.BulkUpload)
			staff.GET("/list", hm.Approval.List)
			staff.DELETE("/:id", hm.Approval.Delete)
		}
	}

	email := v1.Group("/email", authRequired, staffOnly)
	{
		email.POST("/send-bulk", hm.Email.SendBulk)
	}

	timetable := v1.Group("/timetable", authRequired)
	{
		timetable.GET("", hm.Timetable.List)

		staff := timetable.Group("", staffOnly)
		{
			staff.POST("", hm.Timetable.Create)
			staff.PATCH("/:id", hm.Timetable.Update)
			staff.DELETE("/:id", hm.Timetable.Delete)
		}
	}
}

func (hm *HandlerManager) Health(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
