package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrDuplicateID 图书ID已存在
	ErrDuplicateID = apperrors.New(apperrors.ErrCodeDuplicateEntry, "图书ID已存在")
)
