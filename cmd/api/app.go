package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/scheduler"
	"github.com/xiebiao/library/internal/interface/rpc"
)

// App 应用：HTTP、gRPC、定时对账三个长期运行的组件
type App struct {
	cfg       *config.Config
	log       *zap.Logger
	http      *http.Server
	grpc      *rpc.Server
	scheduler *scheduler.ReconcileScheduler
	tracing   *Tracing
}

func newApp(
	cfg *config.Config,
	log *zap.Logger,
	engine *gin.Engine,
	grpcServer *rpc.Server,
	sched *scheduler.ReconcileScheduler,
	tr *Tracing,
) *App {
	return &App{
		cfg: cfg,
		log: log,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		grpc:      grpcServer,
		scheduler: sched,
		tracing:   tr,
	}
}

// Run 启动所有组件，阻塞到ctx结束或任一组件失败
// ctx结束后HTTP在shutdown_timeout内优雅关闭
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// 1. HTTP
	g.Go(func() error {
		a.log.Info("HTTP服务启动",
			zap.String("addr", a.http.Addr),
			zap.String("storage", a.cfg.Storage.Driver),
			zap.Bool("tracing", a.tracing.Enabled),
		)
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeout := a.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP服务关闭失败: %w", err)
		}
		a.log.Info("HTTP服务已停止")
		return nil
	})

	// 2. gRPC健康检查
	g.Go(func() error {
		return a.grpc.Run(ctx)
	})

	// 3. 定时对账
	g.Go(func() error {
		return a.scheduler.Run(ctx)
	})

	return g.Wait()
}
