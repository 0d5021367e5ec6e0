package constants

import "time"

// 评测相关常量
const (
	// 解释器
	DefaultInterpreter = "python3"
	ProgramFileSuffix  = ".py"

	// 单个测试用例的墙钟超时
	DefaultRunTimeout = 5 * time.Second
	MinRunTimeout     = 100 * time.Millisecond
	MaxRunTimeout     = 60 * time.Second

	// 超时后等待子进程输出管道关闭的时间
	KillWaitDelay = 500 * time.Millisecond

	// 输出限制
	MaxOutputSize = 1024 * 1024 // 单路输出上限（1MB）
	MaxErrorSize  = 1024        // 日志中错误信息上限（1KB）
	MaxLogOutput  = 100         // 日志中输出截断长度

	// 临时文件
	TempFilePattern = "edunexus-judge-*" + ProgramFileSuffix
	CodeFilePerm    = 0600

	// 比对模式
	CompareModeTrim   = "trim"
	CompareModeFields = "fields"
)

// 评测失败原因，只写日志，不返回给调用方
const (
	ReasonTimeout        = "timeout"
	ReasonNonZeroExit    = "nonzero_exit"
	ReasonWrongAnswer    = "wrong_answer"
	ReasonMalformedCase  = "malformed_case"
	ReasonHarnessFailure = "harness_failure"
)

// 缓存相关常量
const (
	DefaultCacheTTL      = 10 * time.Minute
	TestCaseCachePrefix  = "edunexus:exam_paper:cases:"
	MinioDownloadTimeout = 30 * time.Second
	MaxTestCasePayload   = 16 * 1024 * 1024 // 对象存储中测试用例载荷上限（16MB）
)

// 存储相关常量
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	DBConnectMaxElapsed = 30 * time.Second
	DefaultMaxIdleConns = 10
	DefaultMaxOpenConns = 50
	DefaultMaxLifetime  = time.Hour

	ExamTestNameMaxLen = 50
)

// 日志相关常量
const (
	// 日志级别
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// 日志文件
	DefaultLogFile    = "log/server.log"
	DefaultLogMaxSize = 200 // MB
	DefaultLogMaxAge  = 30  // days
	DefaultLogBackups = 7
)

// HTTP 相关常量
const (
	// 默认端口
	DefaultServerPort = 8000

	// 超时配置
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 90 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
	ShutdownTimeout     = 10 * time.Second
)
