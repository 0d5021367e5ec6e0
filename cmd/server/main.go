package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/s-dudhiya/EduNexus/internal/cache"
	"github.com/s-dudhiya/EduNexus/internal/conf"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/dao"
	"github.com/s-dudhiya/EduNexus/internal/dao/minio"
	"github.com/s-dudhiya/EduNexus/internal/handler"
	"github.com/s-dudhiya/EduNexus/internal/server"
	"github.com/s-dudhiya/EduNexus/internal/service"
	"github.com/s-dudhiya/EduNexus/internal/task/evaluator"
	"github.com/s-dudhiya/EduNexus/internal/task/result"
	"github.com/s-dudhiya/EduNexus/internal/task/runner"
	"github.com/s-dudhiya/EduNexus/pkg/jwt"
	"github.com/s-dudhiya/EduNexus/pkg/logging"
	"github.com/s-dudhiya/EduNexus/pkg/snowflake"
	"go.uber.org/zap"
)

var confPath = flag.String("conf", "./config/config.yaml", "配置文件路径")

func main() {
	// 加载配置
	flag.Parse()
	cfg := conf.Load(*confPath)

	// 初始化日志
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return
	}
	defer logger.Sync()

	dao.MustInitDB(cfg)     // 初始化数据库连接
	snowflake.MustInit(cfg) // 初始化 snowflake

	metrics := service.GetGlobalMetrics()
	monitor := handler.NewMonitor(cfg.GetString("server.name"), cfg.GetString("judge.interpreter"), metrics)
	monitor.AddCheck("database", dao.Ping)

	var objects dao.ObjectDownloader
	if cfg.GetBool("minio.enable") {
		dao.MustInitMinIO(cfg) // 初始化 MinIO 连接
		objects = minio.NewDownloader(dao.MinIOClient, constants.MaxTestCasePayload)
	}
	store := dao.NewExamStore(dao.DB, objects)

	var papers service.PaperStore = store
	if cfg.GetBool("redis.enable") {
		dao.MustInitRedis(cfg) // 初始化 Redis
		monitor.AddCheck("redis", func(ctx context.Context) error {
			return dao.RedisClient.Ping(ctx).Err()
		})
	}
	if cacheCfg := conf.LoadCacheConfig(cfg); cacheCfg.Enable {
		papers = cache.NewTestCaseCache(dao.RedisClient, store, cacheCfg.TestCaseTTL, metrics)
	}

	judgeCfg := conf.LoadJudgeConfig(cfg)
	eval := evaluator.NewEvaluator(
		runner.NewInterpreterRunner(judgeCfg),
		result.NewComparator(judgeCfg.CompareMode),
	)
	svc := service.NewGradeService(papers, store, eval)

	// 初始化路由
	r := server.SetupRoutes(cfg, server.Handlers{
		Grade:   handler.NewGradeHandler(svc, metrics),
		Monitor: monitor,
		Tokens:  jwt.NewJWT(cfg),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetInt("server.port")),
		Handler:      r,
		ReadTimeout:  constants.DefaultReadTimeout,
		WriteTimeout: constants.DefaultWriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动服务
	go func() {
		zap.L().Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("interpreter", judgeCfg.Interpreter),
			zap.Duration("timeout", judgeCfg.Timeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("服务启动失败", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("收到退出信号，等待评测完成")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("服务关闭超时", zap.Error(err))
	}
	zap.L().Info("服务已退出")
}
