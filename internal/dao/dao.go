package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/model"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	DB          *gorm.DB      // 全局数据库连接
	RedisClient *redis.Client // 全局 Redis 连接，未启用时为 nil
	MinIOClient *minio.Client // 全局 MinIO 连接，未启用时为 nil
)

// dialector 按驱动名选择 gorm 方言
func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case constants.DriverPostgres:
		return postgres.Open(dsn), nil
	case constants.DriverMySQL:
		return mysql.Open(dsn), nil
	case constants.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// OpenDB 打开数据库连接并迁移表结构
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db fail: %w", err)
	}
	if err := db.AutoMigrate(&model.ExamPaper{}, &model.ExamResult{}); err != nil {
		return nil, fmt.Errorf("migrate db fail: %w", err)
	}
	return db, nil
}

// MustInitDB 初始化数据库连接，启动时数据库可能尚未就绪，按指数退避重试
func MustInitDB(cfg *viper.Viper) {
	driver := cfg.GetString("database.driver")
	dsn := cfg.GetString("database.dsn")
	if _, err := dialector(driver, dsn); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DBConnectMaxElapsed)
	defer cancel()

	attempt := 0
	db, err := backoff.Retry(ctx,
		func() (*gorm.DB, error) {
			attempt++
			db, err := OpenDB(driver, dsn)
			if err != nil {
				zap.L().Warn("连接数据库失败，稍后重试", zap.String("driver", driver), zap.Int("attempt", attempt), zap.Error(err))
				return nil, err
			}
			return db, nil
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(constants.DBConnectMaxElapsed),
	)
	if err != nil {
		panic(fmt.Errorf("connect db fail: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Errorf("connect db fail: %w", err))
	}
	// 设置连接池参数
	sqlDB.SetMaxIdleConns(cfg.GetInt("database.max_idle_conns"))
	sqlDB.SetMaxOpenConns(cfg.GetInt("database.max_open_conns"))
	sqlDB.SetConnMaxLifetime(cfg.GetDuration("database.max_lifetime"))

	zap.L().Info("数据库连接成功", zap.String("driver", driver), zap.Int("attempts", attempt))
	DB = db
}

// MustInitRedis 初始化 Redis 连接
func MustInitRedis(conf *viper.Viper) {
	addr := fmt.Sprintf("%s:%d", conf.GetString("redis.host"), conf.GetInt("redis.port"))
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.GetString("redis.password"),
		DB:       conf.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		panic(fmt.Errorf("init redis failed, err:%w", err))
	}
	RedisClient = rdb
}

// MustInitMinIO 初始化 MinIO 连接
func MustInitMinIO(conf *viper.Viper) {
	client, err := minio.New(conf.GetString("minio.endpoint"), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.GetString("minio.access_key"), conf.GetString("minio.secret_key"), ""),
		Secure: conf.GetBool("minio.use_ssl"),
	})
	if err != nil {
		panic(fmt.Errorf("init minio failed, err:%w", err))
	}
	MinIOClient = client
}

// Ping 检查数据库连接，供就绪检查使用
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
