package lending

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
	"github.com/xiebiao/library/pkg/lock"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/saga"
)

// Borrow 借书
//
// 图书不存在、不可借，读者不存在，或ID非正时拒绝，返回(nil, false, nil)且不做任何写入。
// 应还日期不在此处校验（由接口层保证在未来）。
// 同一读者在借阅未归还期间再次借同一本书同样被拒绝（图书不可借）。
//
// 写入顺序：图书置为不可借 → 写入借阅记录；第二步失败时图书恢复为可借，返回存储错误。
func (e *Engine) Borrow(ctx context.Context, bookID, readerID int, dueDate time.Time) (l *loan.Loan, ok bool, err error) {
	defer metrics.ObserveLending("borrow", time.Now())
	ctx, span := startSpan(ctx, "lending.Borrow")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("book.id", bookID), attribute.Int("reader.id", readerID))
	ctx, cancel := e.bound(ctx)
	defer cancel()

	// 1. 参数校验
	if bookID <= 0 || readerID <= 0 {
		e.reject(ReasonInvalidID, bookID, readerID)
		return nil, false, nil
	}

	// 2. 锁定图书，同一本书的借还串行执行
	unlock, err := e.locker.Lock(ctx, lock.BookKey(bookID))
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	// 3. 图书必须存在且可借
	b, err := e.books.FindByID(ctx, bookID)
	if errors.Is(err, book.ErrBookNotFound) {
		e.reject(ReasonBookNotFound, bookID, readerID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !b.Available {
		e.reject(ReasonBookUnavailable, bookID, readerID)
		return nil, false, nil
	}

	// 4. 读者必须存在
	r, err := e.readers.FindByID(ctx, readerID)
	if errors.Is(err, reader.ErrReaderNotFound) {
		e.reject(ReasonReaderNotFound, bookID, readerID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	// 5. 分配借阅ID并写入：图书 → 借阅记录
	// 每次尝试都从读取到的图书状态重新构造，ID冲突重试时不会带上上一次的修改
	restore := b.Snapshot()
	_, err = e.ids.Create(ctx, identity.Loans, e.scanLoanIDs, loan.ErrDuplicateID,
		func(ctx context.Context, loanID int) error {
			borrowed := restore.Snapshot()
			borrowed.MarkBorrowed()
			l = loan.NewLoan(borrowed, r, e.now(), dueDate)
			l.ID = loanID

			return e.commit(ctx, func(s *saga.Saga) {
				s.AddStep("图书置为不可借",
					func(ctx context.Context) error { return e.books.Update(ctx, borrowed) },
					func(ctx context.Context) error { return e.books.Update(ctx, restore) },
				)
				s.AddStep("写入借阅记录",
					func(ctx context.Context) error { return e.loans.Create(ctx, l) },
					nil,
				)
			})
		})
	if err != nil {
		e.log.Error("借书写入失败",
			zap.Int("book_id", bookID),
			zap.Int("reader_id", readerID),
			zap.Error(err))
		return nil, false, err
	}

	metrics.RecordBorrow()
	e.log.Info("借书成功",
		zap.Int("loan_id", l.ID),
		zap.Int("book_id", bookID),
		zap.Int("reader_id", readerID),
		zap.Time("due_date", dueDate))
	e.publish(ctx, RoutingKeyBorrowed, l)

	return l, true, nil
}

func (e *Engine) reject(reason string, bookID, readerID int) {
	metrics.RecordBorrowRejected(reason)
	e.log.Info("借书被拒绝",
		zap.String("reason", reason),
		zap.Int("book_id", bookID),
		zap.Int("reader_id", readerID))
}
