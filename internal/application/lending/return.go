package lending

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/saga"
)

// Return 还书
//
// 借阅记录不存在或已归还时什么都不做，返回nil（幂等）。
// 否则标记归还并记录归还时间；快照中的图书若仍在目录中则恢复为可借。
// 写入顺序：图书置为可借 → 更新借阅记录；第二步失败时图书恢复为不可借。
func (e *Engine) Return(ctx context.Context, loanID int) (err error) {
	defer metrics.ObserveLending("return", time.Now())
	ctx, span := startSpan(ctx, "lending.Return")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("loan.id", loanID))
	ctx, cancel := e.bound(ctx)
	defer cancel()

	if loanID <= 0 {
		return nil
	}

	// 1. 先读一次，确定要锁哪本书
	l, active, err := e.activeLoan(ctx, loanID)
	if err != nil || !active {
		return err
	}

	unlock, err := e.lockFor(ctx, l)
	if err != nil {
		return err
	}
	defer unlock()

	// 2. 锁内重读，并发的还书只有一个能通过
	l, active, err = e.activeLoan(ctx, loanID)
	if err != nil || !active {
		return err
	}

	// 3. 标记归还
	if err := l.MarkReturned(e.now()); err != nil {
		return err
	}

	// 4. 读取目录中的当前图书；已被删除的图书不再写回
	var current *book.Book
	if l.Book != nil {
		current, err = e.books.FindByID(ctx, l.BookID())
		if errors.Is(err, book.ErrBookNotFound) {
			e.log.Warn("归还的图书已不在目录中",
				zap.Int("loan_id", l.ID),
				zap.Int("book_id", l.BookID()))
			current, err = nil, nil
		}
		if err != nil {
			return err
		}
	}

	// 5. 写入：图书 → 借阅记录
	err = e.commit(ctx, func(s *saga.Saga) {
		if current != nil {
			restore := current.Snapshot()
			current.MarkReturned()
			s.AddStep("图书置为可借",
				func(ctx context.Context) error { return e.books.Update(ctx, current) },
				func(ctx context.Context) error { return e.books.Update(ctx, restore) },
			)
		}
		s.AddStep("更新借阅记录",
			func(ctx context.Context) error { return e.loans.Update(ctx, l) },
			nil,
		)
	})
	if err != nil {
		e.log.Error("还书写入失败", zap.Int("loan_id", l.ID), zap.Error(err))
		return err
	}

	metrics.RecordReturn()
	e.log.Info("还书成功",
		zap.Int("loan_id", l.ID),
		zap.Int("book_id", l.BookID()),
		zap.Int("reader_id", l.ReaderID()),
		zap.Bool("overdue", l.ReturnDate.After(l.DueDate)))
	e.publish(ctx, RoutingKeyReturned, l)

	return nil
}

// activeLoan 读取借阅记录，不存在或已归还时active=false
func (e *Engine) activeLoan(ctx context.Context, loanID int) (*loan.Loan, bool, error) {
	l, err := e.loans.FindByID(ctx, loanID)
	if errors.Is(err, loan.ErrLoanNotFound) {
		e.log.Debug("归还的借阅记录不存在", zap.Int("loan_id", loanID))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if l.Returned {
		e.log.Debug("借阅记录已归还", zap.Int("loan_id", loanID))
		return l, false, nil
	}
	return l, true, nil
}
