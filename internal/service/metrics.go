package service

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/s-dudhiya/EduNexus/internal/constants"
)

const (
	outcomeLabel = "outcome"
	reasonLabel  = "reason"
)

// 评测请求的结果分类
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
)

// GradeMetrics 评测统计指标，只在 HTTP 边界记录
type GradeMetrics struct {
	// 计数器
	TotalSubmissions  int64 // 总提交数
	PassedSubmissions int64 // 通过数
	FailedSubmissions int64 // 未通过数
	ErrorSubmissions  int64 // 返回错误的请求数

	// 各失败原因统计
	TimeoutCount      int64
	NonZeroExitCount  int64
	WrongAnswerCount  int64
	MalformedCount    int64
	HarnessErrorCount int64

	ResultsRecorded int64 // 保存成绩次数

	// 性能指标
	TotalGradeTime int64 // 总评测时间（毫秒）
	MaxGradeTime   int64 // 最大评测时间（毫秒）
	MinGradeTime   int64 // 最小评测时间（毫秒）

	// 资源使用
	CurrentActive int32 // 当前活跃评测数
	MaxConcurrent int32 // 历史最大并发数

	// 缓存统计
	CacheHits   int64 // 缓存命中次数
	CacheMisses int64 // 缓存未命中次数

	// 时间戳
	StartTime time.Time // 启动时间

	registry      *prometheus.Registry
	gradeTotal    *prometheus.CounterVec
	gradeDuration prometheus.Histogram

	mu sync.RWMutex
}

// NewGradeMetrics 创建统计实例及其独立的 prometheus registry
func NewGradeMetrics() *GradeMetrics {
	m := &GradeMetrics{
		StartTime:    time.Now(),
		MinGradeTime: int64(^uint64(0) >> 1), // 初始化为最大值
		registry:     prometheus.NewRegistry(),
	}
	m.gradeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edunexus",
			Subsystem: "judge",
			Name:      "grade_total",
			Help:      "Number of grading requests by outcome and failure reason",
		},
		[]string{outcomeLabel, reasonLabel},
	)
	m.gradeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "edunexus",
			Subsystem: "judge",
			Name:      "grade_duration_seconds",
			Help:      "Wall time spent grading one submission",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	m.registry.MustRegister(m.gradeTotal, m.gradeDuration)
	return m
}

var globalMetrics = NewGradeMetrics()

// GetGlobalMetrics 获取全局统计实例
func GetGlobalMetrics() *GradeMetrics {
	return globalMetrics
}

// PrometheusHandler 以 prometheus 文本格式导出
func (m *GradeMetrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSubmission 记录提交
func (m *GradeMetrics) RecordSubmission() {
	atomic.AddInt64(&m.TotalSubmissions, 1)
}

// RecordVerdict 记录一次得出结论的评测
func (m *GradeMetrics) RecordVerdict(gradeTime time.Duration, passed bool, reason string) {
	outcome := OutcomePassed
	if passed {
		atomic.AddInt64(&m.PassedSubmissions, 1)
	} else {
		outcome = OutcomeFailed
		atomic.AddInt64(&m.FailedSubmissions, 1)
	}
	m.recordReason(reason)
	m.gradeTotal.WithLabelValues(outcome, reason).Inc()
	m.recordGradeTime(gradeTime)
}

// RecordError 记录返回错误的评测请求，reason 仅用于 prometheus 标签
func (m *GradeMetrics) RecordError(gradeTime time.Duration, reason string) {
	atomic.AddInt64(&m.ErrorSubmissions, 1)
	if reason == constants.ReasonHarnessFailure {
		m.recordReason(reason)
	}
	m.gradeTotal.WithLabelValues(OutcomeError, reason).Inc()
	m.gradeDuration.Observe(gradeTime.Seconds())
}

func (m *GradeMetrics) recordReason(reason string) {
	switch reason {
	case constants.ReasonTimeout:
		atomic.AddInt64(&m.TimeoutCount, 1)
	case constants.ReasonNonZeroExit:
		atomic.AddInt64(&m.NonZeroExitCount, 1)
	case constants.ReasonWrongAnswer:
		atomic.AddInt64(&m.WrongAnswerCount, 1)
	case constants.ReasonMalformedCase:
		atomic.AddInt64(&m.MalformedCount, 1)
	case constants.ReasonHarnessFailure:
		atomic.AddInt64(&m.HarnessErrorCount, 1)
	}
}

func (m *GradeMetrics) recordGradeTime(gradeTime time.Duration) {
	m.gradeDuration.Observe(gradeTime.Seconds())

	gradeTimeMs := gradeTime.Milliseconds()
	atomic.AddInt64(&m.TotalGradeTime, gradeTimeMs)

	// 更新最大时间
	for {
		oldMax := atomic.LoadInt64(&m.MaxGradeTime)
		if gradeTimeMs <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt64(&m.MaxGradeTime, oldMax, gradeTimeMs) {
			break
		}
	}

	// 更新最小时间
	for {
		oldMin := atomic.LoadInt64(&m.MinGradeTime)
		if gradeTimeMs >= oldMin {
			break
		}
		if atomic.CompareAndSwapInt64(&m.MinGradeTime, oldMin, gradeTimeMs) {
			break
		}
	}
}

// RecordResultSaved 记录保存成绩
func (m *GradeMetrics) RecordResultSaved() {
	atomic.AddInt64(&m.ResultsRecorded, 1)
}

// RecordActiveIncrease 记录活跃评测增加
func (m *GradeMetrics) RecordActiveIncrease() int32 {
	current := atomic.AddInt32(&m.CurrentActive, 1)

	// 更新最大并发数
	for {
		oldMax := atomic.LoadInt32(&m.MaxConcurrent)
		if current <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt32(&m.MaxConcurrent, oldMax, current) {
			break
		}
	}

	return current
}

// RecordActiveDecrease 记录活跃评测减少
func (m *GradeMetrics) RecordActiveDecrease() {
	atomic.AddInt32(&m.CurrentActive, -1)
}

// RecordCacheHit 记录缓存命中
func (m *GradeMetrics) RecordCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// RecordCacheMiss 记录缓存未命中
func (m *GradeMetrics) RecordCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// GetSnapshot 获取统计快照
func (m *GradeMetrics) GetSnapshot() map[string]interface{} {
	m.mu.RLock()
	startTime := m.StartTime
	m.mu.RUnlock()

	passed := atomic.LoadInt64(&m.PassedSubmissions)
	failed := atomic.LoadInt64(&m.FailedSubmissions)
	totalGradeTime := atomic.LoadInt64(&m.TotalGradeTime)

	var avgGradeTime int64
	if passed+failed > 0 {
		avgGradeTime = totalGradeTime / (passed + failed)
	}
	minGradeTime := atomic.LoadInt64(&m.MinGradeTime)
	if passed+failed == 0 {
		minGradeTime = 0
	}

	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	var cacheHitRate float64
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheHits+cacheMisses) * 100
	}

	return map[string]interface{}{
		// 基础统计
		"total_submissions":  atomic.LoadInt64(&m.TotalSubmissions),
		"passed_submissions": passed,
		"failed_submissions": failed,
		"error_submissions":  atomic.LoadInt64(&m.ErrorSubmissions),
		"results_recorded":   atomic.LoadInt64(&m.ResultsRecorded),

		// 失败原因统计
		"timeout_count":       atomic.LoadInt64(&m.TimeoutCount),
		"nonzero_exit_count":  atomic.LoadInt64(&m.NonZeroExitCount),
		"wrong_answer_count":  atomic.LoadInt64(&m.WrongAnswerCount),
		"malformed_count":     atomic.LoadInt64(&m.MalformedCount),
		"harness_error_count": atomic.LoadInt64(&m.HarnessErrorCount),

		// 性能指标
		"avg_grade_time_ms": avgGradeTime,
		"max_grade_time_ms": atomic.LoadInt64(&m.MaxGradeTime),
		"min_grade_time_ms": minGradeTime,

		// 并发统计
		"current_active": atomic.LoadInt32(&m.CurrentActive),
		"max_concurrent": atomic.LoadInt32(&m.MaxConcurrent),

		// 缓存统计
		"cache_hits":     cacheHits,
		"cache_misses":   cacheMisses,
		"cache_hit_rate": cacheHitRate,

		// 运行时间
		"uptime_seconds": time.Since(startTime).Seconds(),
		"start_time":     startTime.Format(time.RFC3339),
	}
}

// Reset 重置计数（谨慎使用），prometheus 指标保持单调
func (m *GradeMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.TotalSubmissions, 0)
	atomic.StoreInt64(&m.PassedSubmissions, 0)
	atomic.StoreInt64(&m.FailedSubmissions, 0)
	atomic.StoreInt64(&m.ErrorSubmissions, 0)
	atomic.StoreInt64(&m.TimeoutCount, 0)
	atomic.StoreInt64(&m.NonZeroExitCount, 0)
	atomic.StoreInt64(&m.WrongAnswerCount, 0)
	atomic.StoreInt64(&m.MalformedCount, 0)
	atomic.StoreInt64(&m.HarnessErrorCount, 0)
	atomic.StoreInt64(&m.ResultsRecorded, 0)
	atomic.StoreInt64(&m.TotalGradeTime, 0)
	atomic.StoreInt64(&m.MaxGradeTime, 0)
	atomic.StoreInt64(&m.MinGradeTime, int64(^uint64(0)>>1))
	atomic.StoreInt32(&m.MaxConcurrent, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)
	m.StartTime = time.Now()
}
