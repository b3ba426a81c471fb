// Package scheduler 定时任务
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/application/lending"
)

// Reconciler 对账任务
type Reconciler interface {
	Reconcile(ctx context.Context) (*lending.Report, error)
}

// ReconcileScheduler 按cron表达式定时执行可借状态对账
// 设计说明:
// 1. 上一次对账未结束时跳过本次(SkipIfStillRunning)
// 2. 表达式为空时不启动,只能通过RunNow手动触发
type ReconcileScheduler struct {
	job      Reconciler
	schedule string
	log      *zap.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewReconcileScheduler 创建对账调度器
func NewReconcileScheduler(job Reconciler, schedule string, log *zap.Logger) *ReconcileScheduler {
	log = log.Named("scheduler")
	cl := cronLogger{log: log}
	return &ReconcileScheduler{
		job:      job,
		schedule: schedule,
		log:      log,
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
	}
}

// Start 注册对账任务并启动调度
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" {
		s.log.Info("未配置对账计划，定时对账已禁用")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(ctx); err != nil {
			s.log.Error("定时对账失败", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("无效的对账计划 %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.log.Info("定时对账已启动", zap.String("schedule", s.schedule))
	return nil
}

// Stop 停止调度并等待正在执行的对账结束
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("定时对账已停止")
}

// Run 启动调度，阻塞到ctx结束后停止（配合errgroup使用）
func (s *ReconcileScheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// RunNow 立即执行一次对账
func (s *ReconcileScheduler) RunNow(ctx context.Context) (*lending.Report, error) {
	return s.job.Reconcile(ctx)
}

// IsRunning 调度是否已启动
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// cronLogger 把cron的日志接口适配到zap
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
