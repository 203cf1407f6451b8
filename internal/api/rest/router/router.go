// Package router wires services, middleware and routes into a gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kinfolkhq/kinfolk-server/internal/api/rest/handler"
	"github.com/kinfolkhq/kinfolk-server/internal/api/rest/middleware"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
)

// Config carries router tuning knobs.
type Config struct {
	BaseURL         string
	RateLimit       int64
	RateLimitPeriod time.Duration
}

// Router assembles the HTTP API.
type Router struct {
	authService    *service.Auth
	profileService *service.Profiles
	childService   *service.Children
	roleService    *service.Roles
	summaryService *service.Summaries
	contextManager model.ContextManager
	config         Config
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	profileService *service.Profiles,
	childService *service.Children,
	roleService *service.Roles,
	summaryService *service.Summaries,
	contextManager model.ContextManager,
	config Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		profileService: profileService,
		childService:   childService,
		roleService:    roleService,
		summaryService: summaryService,
		contextManager: contextManager,
		config:         config,
		logger:         logger,
	}
}

// Register sets up middleware and routes and returns the engine.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Unknown methods on known paths answer 405, not 404.
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Method not allowed",
			"code":  "METHOD_NOT_ALLOWED",
		})
	})

	logging := middleware.NewLogging(r.logger)
	engine.Use(logging.Handle)

	tokenService := r.authService.TokenService()
	authenticate := middleware.NewAuthenticate(tokenService, r.contextManager, r.logger)
	rateLimit := middleware.NewRateLimit(r.config.RateLimit, r.config.RateLimitPeriod, r.logger)

	authHandler := handler.NewAuth(r.authService, tokenService, r.contextManager, r.config.BaseURL, r.logger)
	profileHandler := handler.NewProfile(r.profileService, r.contextManager, r.logger)
	childHandler := handler.NewChild(r.childService, r.contextManager, r.logger)
	summaryHandler := handler.NewSummary(r.summaryService, r.contextManager, r.logger)
	adminHandler := handler.NewAdmin(r.roleService, r.contextManager, r.logger)

	auth := engine.Group("/auth")
	{
		auth.POST("/signup", rateLimit.Handle, authHandler.SignUp)
		auth.POST("/signin", rateLimit.Handle, authHandler.SignIn)
		auth.POST("/signin/google", rateLimit.Handle, authHandler.GoogleSignIn)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/signout", authHandler.SignOut)
		auth.POST("/resend-verification", rateLimit.Handle, authHandler.ResendVerification)
		auth.POST("/reset-password", rateLimit.Handle, authHandler.ResetPassword)
		auth.POST("/update-password", authenticate.HandleOptional, authHandler.UpdatePassword)
		auth.GET("/callback", authHandler.Callback)
	}

	profiles := engine.Group("/profiles")
	{
		profiles.GET("/avatar/*key", profileHandler.DownloadAvatar)

		authed := profiles.Group("", authenticate.Handle)
		authed.GET("/me", profileHandler.Me)
		authed.POST("", profileHandler.Update)
		authed.POST("/avatar", profileHandler.UploadAvatar)
	}

	children := engine.Group("/children", authenticate.Handle)
	{
		children.POST("", childHandler.Add)
		children.GET("/:id", childHandler.Get)
		children.DELETE("/:id", childHandler.Remove)
	}

	summaries := engine.Group("/daily-summaries", authenticate.Handle)
	{
		summaries.POST("", summaryHandler.Create)
		summaries.GET("/:id", summaryHandler.Get)
		summaries.PUT("/:id", summaryHandler.Update)
		summaries.DELETE("/:id", summaryHandler.Delete)
	}

	admin := engine.Group("/admin", authenticate.Handle)
	{
		admin.POST("/assignRole", adminHandler.AssignRole)
	}

	return engine
}
