package reader

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 读者领域错误定义
var (
	// ErrReaderNotFound 读者不存在
	ErrReaderNotFound = apperrors.New(apperrors.ErrCodeReaderNotFound, "读者不存在")

	// ErrDuplicateID 读者ID已存在
	ErrDuplicateID = apperrors.New(apperrors.ErrCodeDuplicateEntry, "读者ID已存在")
)
