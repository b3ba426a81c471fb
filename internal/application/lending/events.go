package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
)

// 事件路由键
const (
	RoutingKeyBorrowed = "loan.borrowed"
	RoutingKeyReturned = "loan.returned"
)

// LoanEvent 借还事件消息体
type LoanEvent struct {
	LoanID     int        `json:"loan_id"`
	BookID     int        `json:"book_id"`
	ReaderID   int        `json:"reader_id"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func newLoanEvent(l *loan.Loan, at time.Time) LoanEvent {
	return LoanEvent{
		LoanID:     l.ID,
		BookID:     l.BookID(),
		ReaderID:   l.ReaderID(),
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		OccurredAt: at,
	}
}

// publish 发布借还事件
// 状态转换已经提交，发布失败只记录日志
func (e *Engine) publish(ctx context.Context, routingKey string, l *loan.Loan) {
	if err := e.publisher.Publish(ctx, routingKey, newLoanEvent(l, e.now())); err != nil {
		e.log.Warn("事件发布失败",
			zap.String("routing_key", routingKey),
			zap.Int("loan_id", l.ID),
			zap.Error(err))
	}
}
