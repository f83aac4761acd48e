package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/metrics"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

// Dependencies 汇总路由所需的全部组件。Storage 为空时不注册头像接口。
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Auth     *auth.AuthService
	Storage  ObjectStore
	Logger   *slog.Logger
	Resumes  *service.ResumeService
	Accounts *service.AccountService
}

// NewRouter 构建 Gin 路由引擎并注册全部接口。
func NewRouter(deps Dependencies) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
		metrics.HTTPMiddleware("/metrics", "/api/ws"),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(deps.Config.API.Production),
		cors.New(corsConfig(deps.Config.API.AllowedOrigins)),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router.Group("/api"), deps)
	return router
}

// corsConfig allows credentialed requests from the configured origins, or any origin without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Correlation-ID", ResumePasswordHeader},
		ExposeHeaders: []string{"X-Correlation-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

var bindingNamesOnce sync.Once

// useJSONFieldNames makes binding errors name fields by their JSON key.
func useJSONFieldNames() {
	bindingNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(resume.JSONFieldName)
		}
	})
}
