package handler

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/s-dudhiya/EduNexus/api"
	"github.com/s-dudhiya/EduNexus/internal/service"
	"go.uber.org/zap"
)

// Monitor 健康检查与统计接口
type Monitor struct {
	serviceName string
	interpreter string
	metrics     *service.GradeMetrics
	checks      map[string]func(ctx context.Context) error // 就绪检查依赖，如数据库、Redis
}

func NewMonitor(serviceName, interpreter string, metrics *service.GradeMetrics) *Monitor {
	return &Monitor{
		serviceName: serviceName,
		interpreter: interpreter,
		metrics:     metrics,
		checks:      make(map[string]func(ctx context.Context) error),
	}
}

// AddCheck 注册就绪检查
func (m *Monitor) AddCheck(name string, check func(ctx context.Context) error) {
	m.checks[name] = check
}

// HealthCheckHandler 健康检查接口
func (m *Monitor) HealthCheckHandler(c *gin.Context) {
	api.ResponseSuccess(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   m.serviceName,
	})
}

// MetricsHandler 获取评测统计信息
func (m *Monitor) MetricsHandler(c *gin.Context) {
	api.ResponseSuccess(c, m.metrics.GetSnapshot())
}

// PrometheusHandler 以 prometheus 格式导出评测指标
func (m *Monitor) PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(m.metrics.PrometheusHandler())
}

// SystemInfoHandler 获取系统信息
func (m *Monitor) SystemInfoHandler(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snapshot := m.metrics.GetSnapshot()
	info := gin.H{
		// Go运行时信息
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"cpu_cores":  runtime.NumCPU(),

		// 内存信息
		"memory": gin.H{
			"alloc_mb":       ms.Alloc / 1024 / 1024,
			"total_alloc_mb": ms.TotalAlloc / 1024 / 1024,
			"sys_mb":         ms.Sys / 1024 / 1024,
			"gc_count":       ms.NumGC,
		},

		// 评测信息
		"judge_stats": gin.H{
			"interpreter":    m.interpreter,
			"current_active": snapshot["current_active"],
			"max_concurrent": snapshot["max_concurrent"],
		},

		// 缓存信息
		"cache_stats": gin.H{
			"cache_hits":     snapshot["cache_hits"],
			"cache_misses":   snapshot["cache_misses"],
			"cache_hit_rate": snapshot["cache_hit_rate"],
		},
	}

	api.ResponseSuccess(c, info)
}

// ReadinessHandler 就绪检查（用于K8s等）
func (m *Monitor) ReadinessHandler(c *gin.Context) {
	// 解释器不存在时无法评测
	if _, err := exec.LookPath(m.interpreter); err != nil {
		zap.L().Warn("readiness: interpreter not found", zap.String("interpreter", m.interpreter), zap.Error(err))
		api.ResponseErrorWithData(c, api.CodeServerBusy, gin.H{"interpreter": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	failed := gin.H{}
	for name, check := range m.checks {
		if err := check(ctx); err != nil {
			zap.L().Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		api.ResponseErrorWithData(c, api.CodeServerBusy, failed)
		return
	}

	api.ResponseSuccess(c, gin.H{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// LivenessHandler 存活检查（用于K8s等）
func (m *Monitor) LivenessHandler(c *gin.Context) {
	api.ResponseSuccess(c, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}
