package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// @title        图书借阅服务 API
// @version      1.0
// @description  图书目录、读者登记与借还书
// @BasePath     /
func main() {
	// 1. .env只用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("加载.env失败: %v", err)
	}

	// 2. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 3. 收到SIGINT/SIGTERM时取消ctx
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 依赖注入(Wire生成)
	app, cleanup, err := InitializeApp(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}

	// 5. 运行到收到信号
	runErr := app.Run(ctx)

	// 6. 释放资源：存储、Redis、MQ、Tracer
	cleanup()

	if runErr != nil {
		app.log.Error("服务异常退出", zap.Error(runErr))
		os.Exit(1)
	}
	app.log.Info("服务已安全关闭")
}
