package api

import (
	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
)

// RegisterRoutes 注册 /api 下的业务路由。
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	cfg := deps.Config
	resumeHandler := NewResumeHandler(deps.Resumes)
	shareHandler := NewShareHandler(deps.Resumes)
	accountHandler := NewAccountHandler(deps.Accounts, deps.Storage)
	authHandler := NewAuthHandler(deps.DB, deps.Auth, deps.Redis, deps.Logger, cfg.Auth, cfg.API.CookieDomain)
	wsHandler := NewWsHandler(deps.Redis, deps.Auth, deps.Logger, cfg.API.AllowedOrigins)

	authMiddleware := middleware.AuthMiddleware(deps.Auth)
	publicLimiter := middleware.NewRateLimiter(deps.Redis, middleware.RateLimiterConfig{
		Prefix:      "ratelimit:share",
		MaxRequests: cfg.Resume.PublicRateLimit,
		Window:      cfg.Resume.PublicRateWindow,
	})

	api.GET("/ws", wsHandler.HandleConnection)
	api.GET("/templates", ListTemplates)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authMiddleware, authHandler.Logout)
	}

	shareGroup := api.Group("/resumes/share/:shareLink")
	shareGroup.Use(middleware.OptionalAuthMiddleware(deps.Auth), publicLimiter.Middleware())
	{
		shareGroup.GET("", shareHandler.GetSharedResume)
		shareGroup.POST("/download", shareHandler.DownloadSharedResume)
		shareGroup.POST("/share", shareHandler.ShareSharedResume)
	}

	resumeGroup := api.Group("/resumes")
	resumeGroup.Use(authMiddleware)
	{
		resumeGroup.POST("", resumeHandler.CreateResume)
		resumeGroup.GET("", resumeHandler.ListResumes)
		resumeGroup.GET("/:id", resumeHandler.GetResume)
		resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
		resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
		resumeGroup.PUT("/:id/settings", resumeHandler.UpdateSettings)
		resumeGroup.POST("/:id/share-link", resumeHandler.RegenerateShareLink)
		resumeGroup.GET("/:id/analytics", resumeHandler.GetAnalytics)
		resumeGroup.POST("/:id/duplicate", resumeHandler.DuplicateResume)
		resumeGroup.POST("/:id/download", resumeHandler.RecordDownload)
		resumeGroup.POST("/:id/share", resumeHandler.RecordShare)
	}

	userGroup := api.Group("/users")
	userGroup.Use(authMiddleware)
	{
		userGroup.GET("/dashboard", accountHandler.Dashboard)
		userGroup.PUT("/subscription", accountHandler.UpdateSubscription)
		userGroup.DELETE("/account", accountHandler.DeleteAccount)
	}

	if deps.Storage != nil {
		assetHandler := NewAssetHandler(deps.Storage, deps.Logger, cfg.API.ClamdAddr, cfg.Resume.AvatarMaxBytes, cfg.Resume.AvatarURLTTL)
		assetGroup := api.Group("/assets")
		assetGroup.Use(authMiddleware)
		{
			assetGroup.POST("/avatar", assetHandler.UploadAvatar)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
		}
	}
}
