package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/s-dudhiya/EduNexus/internal/handler"
	"github.com/s-dudhiya/EduNexus/internal/middleware"
	"github.com/s-dudhiya/EduNexus/pkg/jwt"
	"github.com/s-dudhiya/EduNexus/pkg/logging"
	"github.com/spf13/viper"
)

// Handlers 路由依赖
type Handlers struct {
	Grade   *handler.GradeHandler
	Monitor *handler.Monitor
	Tokens  middleware.TokenParser
}

func SetupRoutes(cfg *viper.Viper, h Handlers) *gin.Engine {
	switch cfg.GetString("server.mode") {
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(logging.GinLogger(), logging.GinRecovery(true)) // 日志中间件，记录请求日志
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowAllOrigins = true
	r.Use(cors.New(corsCfg)) // CORS 跨域中间件，前端与后端分开部署

	// 健康检查和监控端点（不需要认证）
	r.GET("/health", h.Monitor.HealthCheckHandler)
	r.GET("/metrics", h.Monitor.MetricsHandler)
	r.GET("/metrics/prometheus", h.Monitor.PrometheusHandler())
	r.GET("/system", h.Monitor.SystemInfoHandler)
	r.GET("/readiness", h.Monitor.ReadinessHandler)
	r.GET("/liveness", h.Monitor.LivenessHandler)

	auth := middleware.Auth(h.Tokens)
	student := middleware.RequireRole(jwt.RoleStudent)
	faculty := middleware.RequireRole(jwt.RoleFaculty)

	apiV1 := r.Group("/api/v1", auth)
	{
		apiV1.POST("/grade-submission", student, h.Grade.GradeSubmissionHandler)
		apiV1.POST("/record-exam-result", student, h.Grade.RecordExamResultHandler)
		apiV1.POST("/exam-papers/:id/dry-run", faculty, h.Grade.DryRunHandler)
	}

	// 兼容前端现有路径
	legacy := r.Group("/api", auth, student)
	{
		legacy.POST("/run-code/", h.Grade.GradeSubmissionHandler)
		legacy.POST("/submit-exam/", h.Grade.RecordExamResultHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"msg": "404",
		})
	})
	return r
}
