package lending

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
)

// GetLoanByID 查询借阅记录，ID非正或不存在时found=false
func (e *Engine) GetLoanByID(ctx context.Context, id int) (*loan.Loan, bool, error) {
	if id <= 0 {
		return nil, false, nil
	}

	l, err := e.loans.FindByID(ctx, id)
	if errors.Is(err, loan.ErrLoanNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return l, true, nil
}

// GetAllLoans 查询全部借阅记录
func (e *Engine) GetAllLoans(ctx context.Context) ([]*loan.Loan, error) {
	return e.loans.FindAll(ctx)
}

// GetLoansByReaderID 查询读者的借阅记录，ID非正时返回空
func (e *Engine) GetLoansByReaderID(ctx context.Context, readerID int) ([]*loan.Loan, error) {
	if readerID <= 0 {
		return []*loan.Loan{}, nil
	}
	return e.loans.FindByReaderID(ctx, readerID)
}

// GetLoansByBookID 查询图书的借阅记录，ID非正时返回空
func (e *Engine) GetLoansByBookID(ctx context.Context, bookID int) ([]*loan.Loan, error) {
	if bookID <= 0 {
		return []*loan.Loan{}, nil
	}
	return e.loans.FindByBookID(ctx, bookID)
}

// UpdateLoan 管理端修改借阅记录
// 只采用新的应还日期；快照、借出日期、归还状态以存储为准，借还状态只能通过Borrow/Return改变
func (e *Engine) UpdateLoan(ctx context.Context, l *loan.Loan) (bool, error) {
	if l == nil || l.ID <= 0 {
		return false, nil
	}

	stored, found, err := e.GetLoanByID(ctx, l.ID)
	if err != nil || !found {
		return found, err
	}

	// 与还书串行，避免把已归还的记录写回未归还
	unlock, err := e.lockFor(ctx, stored)
	if err != nil {
		return false, err
	}
	defer unlock()

	stored, found, err = e.GetLoanByID(ctx, l.ID)
	if err != nil || !found {
		return found, err
	}

	l.KeepLifecycleOf(stored)
	if err := e.loans.Update(ctx, l); err != nil {
		if errors.Is(err, loan.ErrLoanNotFound) {
			return false, nil
		}
		return false, err
	}

	e.log.Info("借阅记录已修改", zap.Int("loan_id", l.ID), zap.Time("due_date", l.DueDate))
	return true, nil
}

// DeleteLoan 删除借阅记录
// 删除未归还的记录不会恢复图书的可借状态，由对账修复
func (e *Engine) DeleteLoan(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	err := e.loans.Delete(ctx, id)
	if errors.Is(err, loan.ErrLoanNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	e.log.Info("借阅记录已删除", zap.Int("loan_id", id))
	return true, nil
}
