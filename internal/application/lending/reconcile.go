package lending

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/lock"
	"github.com/xiebiao/library/pkg/metrics"
)

// Report 对账结果
type Report struct {
	Checked  int   `json:"checked"`  // 检查的图书数量
	Repaired []int `json:"repaired"` // 修复了可借状态的图书ID
	Orphans  []int `json:"orphans"`  // 图书已不在目录中的未归还借阅ID
}

// Reconcile 按借阅记录重新推导每本书的可借状态
// 可借 ⇔ 没有未归还的借阅记录。每本书在自己的锁内检查和修复，与借还书互斥。
func (e *Engine) Reconcile(ctx context.Context) (report *Report, err error) {
	defer metrics.ObserveLending("reconcile", time.Now())
	ctx, span := startSpan(ctx, "lending.Reconcile")
	defer func() { endSpan(span, err) }()

	report = &Report{Repaired: []int{}, Orphans: []int{}}

	books, err := e.books.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make(map[int]bool, len(books))
	for _, b := range books {
		catalog[b.ID] = true

		repaired, err := e.reconcileBook(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		report.Checked++
		if repaired {
			report.Repaired = append(report.Repaired, b.ID)
		}
	}

	// 未归还但图书已删除的借阅记录，只报告不修改
	loans, err := e.loans.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range loans {
		if !l.Returned && !catalog[l.BookID()] {
			report.Orphans = append(report.Orphans, l.ID)
		}
	}

	e.log.Info("对账完成",
		zap.Int("checked", report.Checked),
		zap.Ints("repaired", report.Repaired),
		zap.Ints("orphans", report.Orphans))
	return report, nil
}

// reconcileBook 修复一本书的可借状态，返回是否做了修改
func (e *Engine) reconcileBook(ctx context.Context, bookID int) (bool, error) {
	unlock, err := e.locker.Lock(ctx, lock.BookKey(bookID))
	if err != nil {
		return false, err
	}
	defer unlock()

	b, err := e.books.FindByID(ctx, bookID)
	if errors.Is(err, book.ErrBookNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	loans, err := e.loans.FindByBookID(ctx, bookID)
	if err != nil {
		return false, err
	}
	onLoan := false
	for _, l := range loans {
		if !l.Returned {
			onLoan = true
			break
		}
	}

	if b.Available != onLoan {
		return false, nil
	}

	e.log.Warn("图书可借状态与借阅记录不一致，已修复",
		zap.Int("book_id", bookID),
		zap.Bool("was_available", b.Available),
		zap.Bool("on_loan", onLoan))
	b.Available = !onLoan
	if err := e.books.Update(ctx, b); err != nil {
		return false, err
	}
	metrics.RecordAvailabilityRepair()
	return true, nil
}
