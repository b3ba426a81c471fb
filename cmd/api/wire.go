//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 基础设施：日志、追踪、存储、Redis、锁、序列、消息
var infrastructureSet = wire.NewSet(
	provideLogger,
	provideTracing,
	provideStore,
	provideRedisClient,
	provideLocker,
	provideSequence,
	providePublisher,
)

// domainSet 领域层：ID分配与目录/读者服务
var domainSet = wire.NewSet(
	identity.NewAllocator,
	provideBookService,
	provideReaderService,
)

// applicationSet 应用层：借还书引擎与定时对账
var applicationSet = wire.NewSet(
	provideEngine,
	provideScheduler,
)

// interfaceSet 接口层：HTTP处理器、路由、gRPC
var interfaceSet = wire.NewSet(
	handler.NewBookHandler,
	handler.NewReaderHandler,
	handler.NewLoanHandler,
	provideAdminHandler,
	provideHealthHandler,
	provideHandlers,
	router.New,
	provideGRPCServer,
)

// InitializeApp 初始化整个应用
// cleanup按创建的逆序释放资源
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
