package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrLoanAlreadyReturned 借阅已归还
	ErrLoanAlreadyReturned = apperrors.New(apperrors.ErrCodeLoanAlreadyReturned, "借阅已归还")

	// ErrDuplicateID 借阅ID已存在
	ErrDuplicateID = apperrors.New(apperrors.ErrCodeDuplicateEntry, "借阅ID已存在")
)
