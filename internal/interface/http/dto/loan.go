package dto

import (
	"time"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/loan"
)

// BorrowRequest 借书请求
// validator tag说明:
// - gt=0: ID必须为正
// - future: 应还日期必须晚于当前时间(在pkg/validator中注册)
type BorrowRequest struct {
	BookID   int       `json:"book_id" binding:"required,gt=0" example:"1"`
	ReaderID int       `json:"reader_id" binding:"required,gt=0" example:"1"`
	DueDate  time.Time `json:"due_date" binding:"required,future" example:"2025-04-01T00:00:00Z"`
}

// UpdateLoanRequest 修改借阅记录请求，只能修改应还日期
type UpdateLoanRequest struct {
	DueDate time.Time `json:"due_date" binding:"required" example:"2025-04-15T00:00:00Z"`
}

// LoanResponse 借阅记录响应
// Book/Reader是借出时刻的快照
type LoanResponse struct {
	ID         int             `json:"id" example:"1"`
	Book       *BookResponse   `json:"book"`
	Reader     *ReaderResponse `json:"reader"`
	BorrowDate time.Time       `json:"borrow_date" example:"2025-03-01T09:00:00Z"`
	DueDate    time.Time       `json:"due_date" example:"2025-04-01T00:00:00Z"`
	ReturnDate *time.Time      `json:"return_date"`
	Returned   bool            `json:"returned" example:"false"`
	Status     string          `json:"status" example:"借出中"`
}

// NewLoanResponse 领域对象 → 响应
func NewLoanResponse(l *loan.Loan) *LoanResponse {
	if l == nil {
		return nil
	}
	return &LoanResponse{
		ID:         l.ID,
		Book:       NewBookResponse(l.Book),
		Reader:     NewReaderResponse(l.Reader),
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
		Status:     l.Status().String(),
	}
}

// NewLoanList 借阅记录列表响应
func NewLoanList(loans []*loan.Loan) []*LoanResponse {
	list := make([]*LoanResponse, 0, len(loans))
	for _, l := range loans {
		list = append(list, NewLoanResponse(l))
	}
	return list
}

// ReconcileResponse 对账结果
type ReconcileResponse struct {
	Checked  int   `json:"checked" example:"120"`
	Repaired []int `json:"repaired"`
	Orphans  []int `json:"orphans"`
}

// NewReconcileResponse 对账报告 → 响应
func NewReconcileResponse(r *lending.Report) *ReconcileResponse {
	resp := &ReconcileResponse{Repaired: []int{}, Orphans: []int{}}
	if r == nil {
		return resp
	}
	resp.Checked = r.Checked
	resp.Repaired = append(resp.Repaired, r.Repaired...)
	resp.Orphans = append(resp.Orphans, r.Orphans...)
	return resp
}
