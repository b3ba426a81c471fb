package loan

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reader"
)

// Status 借阅状态(由Returned推导,不单独存储)
type Status int

const (
	StatusActive   Status = 1 // 借出中
	StatusReturned Status = 2 // 已归还
)

// String 实现Stringer接口
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "借出中"
	case StatusReturned:
		return "已归还"
	default:
		return "未知状态"
	}
}

// Loan 借阅记录(聚合根)
// 设计说明:
// 1. Book/Reader是借出时刻的快照,之后目录或读者的修改不影响历史记录
// 2. 状态只能 借出中 → 已归还,不可逆
// 3. 已归还 ⇔ ReturnDate非空
// 4. Book可能为nil(历史数据缺失),归还时跳过图书步骤
type Loan struct {
	ID         int
	Book       *book.Book
	Reader     *reader.Reader
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Returned   bool
}

// NewLoan 创建借阅记录(工厂方法)
// 快照在此拷贝,调用方之后修改b/r不会影响记录
func NewLoan(b *book.Book, r *reader.Reader, borrowedAt, dueDate time.Time) *Loan {
	return &Loan{
		Book:       b.Snapshot(),
		Reader:     r.Snapshot(),
		BorrowDate: borrowedAt,
		DueDate:    dueDate,
	}
}

// Status 当前状态
func (l *Loan) Status() Status {
	if l.Returned {
		return StatusReturned
	}
	return StatusActive
}

// MarkReturned 归还(领域行为)
// 业务规则:已归还的记录不能再次归还
func (l *Loan) MarkReturned(at time.Time) error {
	if l.Returned {
		return ErrLoanAlreadyReturned
	}
	l.Returned = true
	l.ReturnDate = &at
	if l.Book != nil {
		l.Book.MarkReturned()
	}
	return nil
}

// IsOverdue 借出中且已过应还日期
func (l *Loan) IsOverdue(now time.Time) bool {
	return !l.Returned && now.After(l.DueDate)
}

// BookID 借阅的图书ID,快照缺失时为0
func (l *Loan) BookID() int {
	if l.Book == nil {
		return 0
	}
	return l.Book.ID
}

// ReaderID 借阅的读者ID,快照缺失时为0
func (l *Loan) ReaderID() int {
	if l.Reader == nil {
		return 0
	}
	return l.Reader.ID
}

// KeepLifecycleOf 保留stored的生命周期字段,只采用l的应还日期
// 用于管理端修改借阅记录:不允许通过修改接口改变借还状态
func (l *Loan) KeepLifecycleOf(stored *Loan) {
	l.ID = stored.ID
	l.Book = stored.Book
	l.Reader = stored.Reader
	l.BorrowDate = stored.BorrowDate
	l.Returned = stored.Returned
	l.ReturnDate = stored.ReturnDate
}
