package conf

import (
	"fmt"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/spf13/viper"
)

// ValidateConfig 验证配置文件
func ValidateConfig(cfg *viper.Viper) error {
	// 验证服务器配置
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("服务器配置错误: %w", err)
	}

	// 验证评测配置
	if err := validateJudgeConfig(cfg); err != nil {
		return fmt.Errorf("评测配置错误: %w", err)
	}

	// 验证数据库配置
	if err := validateDatabaseConfig(cfg); err != nil {
		return fmt.Errorf("数据库配置错误: %w", err)
	}

	// 验证缓存配置
	if err := validateCacheConfig(cfg); err != nil {
		return fmt.Errorf("缓存配置错误: %w", err)
	}

	return nil
}

// validateServerConfig 验证服务器配置
func validateServerConfig(cfg *viper.Viper) error {
	port := cfg.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("端口号无效: %d (应在1-65535之间)", port)
	}

	mode := cfg.GetString("server.mode")
	if mode != "dev" && mode != "prod" && mode != "test" {
		return fmt.Errorf("运行模式无效: %s (应为dev/prod/test)", mode)
	}

	return nil
}

// validateJudgeConfig 验证评测配置
func validateJudgeConfig(cfg *viper.Viper) error {
	if cfg.GetString("judge.interpreter") == "" {
		return fmt.Errorf("解释器不能为空")
	}

	timeout := cfg.GetDuration("judge.timeout")
	if timeout < constants.MinRunTimeout || timeout > constants.MaxRunTimeout {
		return fmt.Errorf("超时时间无效: %v (应在%v-%v之间)",
			timeout, constants.MinRunTimeout, constants.MaxRunTimeout)
	}

	maxOutputSize := cfg.GetInt64("judge.max_output_size")
	if maxOutputSize <= 0 || maxOutputSize > 100*1024*1024 {
		return fmt.Errorf("最大输出大小无效: %d (应在1B-100MB之间)", maxOutputSize)
	}

	mode := cfg.GetString("judge.compare_mode")
	if mode != constants.CompareModeTrim && mode != constants.CompareModeFields {
		return fmt.Errorf("比对模式无效: %s (应为%s/%s)", mode, constants.CompareModeTrim, constants.CompareModeFields)
	}

	return nil
}

// validateDatabaseConfig 验证数据库配置
func validateDatabaseConfig(cfg *viper.Viper) error {
	switch cfg.GetString("database.driver") {
	case constants.DriverPostgres, constants.DriverMySQL, constants.DriverSQLite:
	default:
		return fmt.Errorf("数据库驱动无效: %s (应为postgres/mysql/sqlite)", cfg.GetString("database.driver"))
	}
	if cfg.GetString("database.dsn") == "" {
		return fmt.Errorf("数据库连接串不能为空")
	}
	return nil
}

// validateCacheConfig 验证缓存配置
func validateCacheConfig(cfg *viper.Viper) error {
	if !cfg.GetBool("cache.enable") {
		return nil
	}
	if !cfg.GetBool("redis.enable") {
		return fmt.Errorf("启用测试用例缓存需要同时启用 redis")
	}
	ttl := cfg.GetDuration("cache.test_case_ttl")
	if ttl <= 0 || ttl.Hours() > 24 {
		return fmt.Errorf("缓存TTL无效: %v (应在0-24h之间)", ttl)
	}
	return nil
}

// SetDefaultValues 设置默认配置值
func SetDefaultValues(cfg *viper.Viper) {
	// 服务器默认值
	cfg.SetDefault("server.port", constants.DefaultServerPort)
	cfg.SetDefault("server.mode", "dev")
	cfg.SetDefault("server.name", "edunexus-judge")

	// 评测默认值
	cfg.SetDefault("judge.interpreter", constants.DefaultInterpreter)
	cfg.SetDefault("judge.interpreter_args", []string{})
	cfg.SetDefault("judge.timeout", constants.DefaultRunTimeout)
	cfg.SetDefault("judge.temp_dir", "")
	cfg.SetDefault("judge.max_output_size", constants.MaxOutputSize)
	cfg.SetDefault("judge.compare_mode", constants.CompareModeTrim)

	// 数据库默认值
	cfg.SetDefault("database.driver", constants.DriverPostgres)
	cfg.SetDefault("database.max_idle_conns", constants.DefaultMaxIdleConns)
	cfg.SetDefault("database.max_open_conns", constants.DefaultMaxOpenConns)
	cfg.SetDefault("database.max_lifetime", constants.DefaultMaxLifetime)

	// Redis 与缓存默认值
	cfg.SetDefault("redis.enable", false)
	cfg.SetDefault("redis.host", "127.0.0.1")
	cfg.SetDefault("redis.port", 6379)
	cfg.SetDefault("redis.db", 0)
	cfg.SetDefault("cache.enable", false)
	cfg.SetDefault("cache.test_case_ttl", constants.DefaultCacheTTL)

	// MinIO 默认值
	cfg.SetDefault("minio.enable", false)
	cfg.SetDefault("minio.use_ssl", false)

	// JWT 默认值
	cfg.SetDefault("jwt.access_expire_seconds", 24*3600)

	// 日志默认值
	cfg.SetDefault("log.level", constants.LogLevelInfo)
	cfg.SetDefault("log.filename", constants.DefaultLogFile)
	cfg.SetDefault("log.max_size", constants.DefaultLogMaxSize)
	cfg.SetDefault("log.max_age", constants.DefaultLogMaxAge)
	cfg.SetDefault("log.max_backups", constants.DefaultLogBackups)

	// Snowflake默认值
	cfg.SetDefault("snowflake.machine_id", 1)
	cfg.SetDefault("snowflake.start_time", "2025-07-01")
}
