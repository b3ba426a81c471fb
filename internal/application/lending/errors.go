package lending

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 拒绝借书的原因
// 拒绝是正常的业务结果，Borrow返回(nil, false, nil)，原因只进入日志和指标
const (
	ReasonInvalidID       = "invalid_id"
	ReasonBookNotFound    = "book_not_found"
	ReasonBookUnavailable = "book_unavailable"
	ReasonReaderNotFound  = "reader_not_found"
)

// ErrBorrowRejected 借书被拒绝，供接口层返回给调用方
var ErrBorrowRejected = apperrors.New(apperrors.ErrCodeBorrowRejected, "图书不可借或读者/图书不存在")
