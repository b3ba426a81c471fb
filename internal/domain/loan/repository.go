package loan

import (
	"context"
)

// Repository 借阅记录仓储接口
// 设计说明:
// 1. 借阅记录与图书分属不同集合,存储层不提供跨集合原子写
// 2. FindByReaderID/FindByBookID按快照中的ID过滤
// 3. FindByID/Update/Delete找不到时返回ErrLoanNotFound
type Repository interface {
	Create(ctx context.Context, loan *Loan) error
	FindByID(ctx context.Context, id int) (*Loan, error)
	FindAll(ctx context.Context) ([]*Loan, error)
	FindByReaderID(ctx context.Context, readerID int) ([]*Loan, error)
	FindByBookID(ctx context.Context, bookID int) ([]*Loan, error)
	Update(ctx context.Context, loan *Loan) error
	Delete(ctx context.Context, id int) error
}
