package conf

import (
	"time"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/spf13/viper"
)

// JudgeConfig 评测配置
type JudgeConfig struct {
	Interpreter     string        // 解释器可执行文件
	InterpreterArgs []string      // 解释器参数，位于程序文件之前
	Timeout         time.Duration // 单个测试用例墙钟超时
	TempDir         string        // 临时文件目录，空为系统默认
	MaxOutputSize   int64         // 单路输出上限
	CompareMode     string        // 输出比对模式 trim/fields
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable      bool
	TestCaseTTL time.Duration // 测试用例缓存时间
}

// LoadJudgeConfig 从配置文件加载评测配置
func LoadJudgeConfig(cfg *viper.Viper) *JudgeConfig {
	return &JudgeConfig{
		Interpreter:     cfg.GetString("judge.interpreter"),
		InterpreterArgs: cfg.GetStringSlice("judge.interpreter_args"),
		Timeout:         cfg.GetDuration("judge.timeout"),
		TempDir:         cfg.GetString("judge.temp_dir"),
		MaxOutputSize:   cfg.GetInt64("judge.max_output_size"),
		CompareMode:     cfg.GetString("judge.compare_mode"),
	}
}

// LoadCacheConfig 从配置文件加载缓存配置
func LoadCacheConfig(cfg *viper.Viper) *CacheConfig {
	return &CacheConfig{
		Enable:      cfg.GetBool("cache.enable"),
		TestCaseTTL: cfg.GetDuration("cache.test_case_ttl"),
	}
}

// GetDefaultJudgeConfig 获取默认评测配置
func GetDefaultJudgeConfig() *JudgeConfig {
	return &JudgeConfig{
		Interpreter:     constants.DefaultInterpreter,
		InterpreterArgs: nil,
		Timeout:         constants.DefaultRunTimeout,
		TempDir:         "",
		MaxOutputSize:   constants.MaxOutputSize,
		CompareMode:     constants.CompareModeTrim,
	}
}
