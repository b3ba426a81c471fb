// Package lending 借还书一致性引擎
//
// 图书、借阅记录分属两个集合，存储不提供跨集合事务。引擎用以下方式保证
// "图书不可借 ⇔ 存在未归还的借阅记录"：
//  1. 同一本书的借、还、对账持有同一把锁（lock.BookKey），单写者
//  2. 两次写入组成Saga，第二步失败时恢复图书的可借状态
//  3. 存储支持事务时（MySQL）整个状态转换在一个事务内执行
//  4. 定时对账（Reconcile）按借阅记录重新推导可借状态，修复补偿失败留下的偏差
package lending

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
	"github.com/xiebiao/library/pkg/lock"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/saga"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "library/lending"

// DefaultSagaTimeout 单次状态转换的默认超时
const DefaultSagaTimeout = 5 * time.Second

// Transactor 多集合事务
// MySQL存储由mysql.TxManager实现；文档存储没有实现，引擎只依赖Saga
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Option 引擎可选配置
type Option func(*Engine)

// WithTransactor 状态转换在事务内执行
func WithTransactor(tx Transactor) Option {
	return func(e *Engine) {
		e.tx = tx
	}
}

// WithPublisher 借还成功后发布事件
func WithPublisher(p mq.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSagaTimeout 设置状态转换超时，<=0表示不限制
func WithSagaTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.sagaTimeout = d
	}
}

// Engine 借还书引擎
type Engine struct {
	books   book.Repository
	readers reader.Repository
	loans   loan.Repository
	ids     *identity.Allocator
	locker  lock.Locker

	tx          Transactor
	publisher   mq.EventPublisher
	now         func() time.Time
	sagaTimeout time.Duration
	log         *zap.Logger
}

// NewEngine 创建借还书引擎
func NewEngine(
	books book.Repository,
	readers reader.Repository,
	loans loan.Repository,
	ids *identity.Allocator,
	locker lock.Locker,
	log *zap.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		books:       books,
		readers:     readers,
		loans:       loans,
		ids:         ids,
		locker:      locker,
		publisher:   mq.NopPublisher{},
		now:         time.Now,
		sagaTimeout: DefaultSagaTimeout,
		log:         log.Named("lending"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// bound 整个状态转换（加锁、读取、分配ID、写入）共用一个超时
// redis锁不续期，配置保证lock.ttl大于该超时，锁不会在转换中途过期
func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.sagaTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.sagaTimeout)
}

// commit 执行一次状态转换的写入
// build向Saga中添加步骤；有Transactor时整个Saga在事务内执行
func (e *Engine) commit(ctx context.Context, build func(s *saga.Saga)) error {
	run := func(ctx context.Context) error {
		s := saga.NewSaga(e.sagaTimeout, e.log)
		build(s)
		return s.Execute(ctx)
	}
	if e.tx == nil {
		return run(ctx)
	}
	return e.tx.Transaction(ctx, run)
}

// lockFor 借阅记录对应的锁：有图书快照时锁图书，否则锁借阅记录本身
func (e *Engine) lockFor(ctx context.Context, l *loan.Loan) (lock.Unlock, error) {
	if l.Book != nil {
		return e.locker.Lock(ctx, lock.BookKey(l.BookID()))
	}
	return e.locker.Lock(ctx, lock.LoanKey(l.ID))
}

func (e *Engine) scanLoanIDs(ctx context.Context) ([]int, error) {
	loans, err := e.loans.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(loans))
	for i, l := range loans {
		ids[i] = l.ID
	}
	return ids, nil
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, tracerName, name)
}

// endSpan 结束span并记录错误
//
//	defer func() { endSpan(span, err) }()
func endSpan(span trace.Span, err error) {
	tracing.RecordError(span, err)
	span.End()
}
