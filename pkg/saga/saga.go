// Package saga 顺序执行一组本地写操作，失败时逆序补偿
//
// 用于不支持跨集合事务的存储：借书时"图书置为不可借"与"写入借阅记录"
// 是两次独立写入，第二步失败需要撤销第一步。
//
//	s := saga.NewSaga(5*time.Second, log)
//	s.AddStep("图书置为不可借", markUnavailable, markAvailable)
//	s.AddStep("写入借阅记录", insertLoan, nil)
//	err := s.Execute(ctx)
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/pkg/metrics"
)

// Step Saga中的一个步骤
// Compensate必须只依赖自身Action的结果，可以为nil（最后一步通常无需补偿）
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CompensationError 补偿本身失败
// 此时数据处于中间状态，需要对账任务修复
type CompensationError struct {
	Step string
	Err  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("补偿失败[步骤:%s]: %v", e.Step, e.Err)
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}

// Saga 一次Saga执行，不可复用
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      *zap.Logger
}

// NewSaga 创建Saga，timeout<=0表示不设置整体超时
func NewSaga(timeout time.Duration, log *zap.Logger) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saga{
		steps:   make([]Step, 0, 2),
		timeout: timeout,
		log:     log,
	}
}

// AddStep 添加一个步骤，按添加顺序执行，按逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
//
// 返回的错误包装了失败步骤的原始错误（errors.Is可穿透）；
// 若补偿也失败，额外用errors.Join附带*CompensationError。
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSaga(err == nil, time.Since(start))
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			stepErr := fmt.Errorf("saga超时: %w", ctxErr)
			return errors.Join(stepErr, s.compensate(context.WithoutCancel(ctx)))
		}

		if step.Action != nil {
			if actErr := step.Action(ctx); actErr != nil {
				s.log.Warn("saga步骤失败，开始补偿",
					zap.Int("step", i),
					zap.String("name", step.Name),
					zap.Error(actErr))
				stepErr := fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, actErr)
				// 补偿使用不会被取消的Context，避免超时后补偿也失败
				return errors.Join(stepErr, s.compensate(context.WithoutCancel(ctx)))
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行已完成步骤的补偿
// 某个补偿失败时继续执行其余补偿，返回所有失败
func (s *Saga) compensate(ctx context.Context) error {
	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		metrics.RecordSagaCompensation()
		if err := step.Compensate(ctx); err != nil {
			s.log.Error("saga补偿失败，需要对账修复",
				zap.String("name", step.Name),
				zap.Error(err))
			errs = append(errs, &CompensationError{Step: step.Name, Err: err})
		}
	}

	s.executed = nil
	return errors.Join(errs...)
}
