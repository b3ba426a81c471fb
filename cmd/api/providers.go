package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/reader"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/infrastructure/scheduler"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/internal/interface/rpc"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/lock"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/tracing"
)

// closeTimeout 释放单个外部连接的最长时间
const closeTimeout = 5 * time.Second

// ========================================
// 基础设施
// ========================================

// provideLogger 根据配置创建根logger
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(cfg.Log.Logger(), "library")
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

// Tracing 链路追踪是否已初始化
type Tracing struct {
	Enabled bool
}

// provideTracing 按配置初始化全局TracerProvider，cleanup时刷新未发送的Span
func provideTracing(cfg *config.Config, log *zap.Logger) (*Tracing, func(), error) {
	if !cfg.Tracing.Enabled {
		return &Tracing{}, func() {}, nil
	}

	shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	if err != nil {
		return nil, nil, err
	}
	log.Info("链路追踪已启用", zap.String("endpoint", cfg.Tracing.Endpoint))

	return &Tracing{Enabled: true}, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn("关闭TracerProvider失败", zap.Error(err))
		}
	}, nil
}

// provideStore 按storage.driver打开存储
func provideStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*persistence.Store, func(), error) {
	store, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Warn("关闭存储失败", zap.Error(err))
		}
	}, nil
}

// provideRedisClient 锁或序列使用redis时才建立连接，否则返回nil
func provideRedisClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.UsesRedis() {
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}, nil
}

// provideLocker 图书锁：单实例用进程内锁，多实例用Redis锁
func provideLocker(cfg *config.Config, client *goredis.Client, log *zap.Logger) lock.Locker {
	if cfg.Lock.Driver == config.LockRedis {
		return redis.NewLocker(client, cfg.Lock.TTL, cfg.Lock.RetryInterval, log)
	}
	return lock.NewKeyedMutex()
}

// provideSequence ID序列：默认与数据同库，可切换到Redis
func provideSequence(cfg *config.Config, store *persistence.Store, client *goredis.Client) identity.Sequence {
	if cfg.Sequence.Driver == config.SequenceRedis {
		return redis.NewSequence(client)
	}
	return store.Sequence
}

// providePublisher 借还事件发布者，未启用MQ时不发布
func providePublisher(cfg *config.Config, log *zap.Logger) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}

	// Broker不可用时快速失败，不拖慢借还书
	breaker := circuitbreaker.NewCircuitBreaker("rabbitmq", circuitbreaker.Config{
		Failures: circuitbreaker.DefaultFailures,
		Cooldown: 30 * time.Second,
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Warn("熔断器状态变化", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
	})

	return mq.NewGuardedPublisher(pub, breaker), func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}, nil
}

// ========================================
// 领域与应用
// ========================================

func provideBookService(store *persistence.Store, ids *identity.Allocator, locker lock.Locker, log *zap.Logger) book.Service {
	return book.NewService(store.Books, ids, locker, log)
}

func provideReaderService(store *persistence.Store, ids *identity.Allocator, log *zap.Logger) reader.Service {
	return reader.NewService(store.Readers, ids, log)
}

// provideEngine 借还书引擎
// MySQL后端把Saga放进数据库事务；文档库后端只依赖Saga补偿
func provideEngine(
	cfg *config.Config,
	store *persistence.Store,
	ids *identity.Allocator,
	locker lock.Locker,
	publisher mq.EventPublisher,
	_ *Tracing,
	log *zap.Logger,
) *lending.Engine {
	opts := []lending.Option{
		lending.WithPublisher(publisher),
		lending.WithSagaTimeout(cfg.Lending.SagaTimeout),
	}
	if store.TxManager != nil {
		opts = append(opts, lending.WithTransactor(store.TxManager))
	}
	return lending.NewEngine(store.Books, store.Readers, store.Loans, ids, locker, log, opts...)
}

// ========================================
// 接口层
// ========================================

func provideAdminHandler(engine *lending.Engine) *handler.AdminHandler {
	return handler.NewAdminHandler(engine)
}

func provideHealthHandler(store *persistence.Store) *handler.HealthHandler {
	return handler.NewHealthHandler(store, store.Driver)
}

func provideHandlers(
	books *handler.BookHandler,
	readers *handler.ReaderHandler,
	loans *handler.LoanHandler,
	admin *handler.AdminHandler,
	health *handler.HealthHandler,
) router.Handlers {
	return router.Handlers{
		Book:   books,
		Reader: readers,
		Loan:   loans,
		Admin:  admin,
		Health: health,
	}
}

func provideGRPCServer(cfg *config.Config, store *persistence.Store, log *zap.Logger) *rpc.Server {
	return rpc.NewServer(cfg.GRPC.Port, cfg.GRPC.HealthInterval, store, log)
}

func provideScheduler(cfg *config.Config, engine *lending.Engine, log *zap.Logger) *scheduler.ReconcileScheduler {
	return scheduler.NewReconcileScheduler(engine, cfg.Lending.ReconcileSchedule, log)
}
