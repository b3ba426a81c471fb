package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want int
	}{
		{ErrCodeBookNotFound, http.StatusNotFound},
		{ErrCodeBorrowRejected, http.StatusBadRequest},
		{ErrCodeDuplicateEntry, http.StatusConflict},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{42, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, New(c.code, "x").HTTPStatus(), "code=%d", c.code)
	}
}

func TestAppError_Is(t *testing.T) {
	notFound := New(ErrCodeBookNotFound, "图书不存在")
	wrapped := fmt.Errorf("查询失败: %w", Wrap(notFound, "仓储错误"))

	assert.ErrorIs(t, wrapped, notFound, "多层包装后仍能识别哨兵错误")
	assert.NotErrorIs(t, wrapped, New(ErrCodeReaderNotFound, "读者不存在"))
}

func TestGetAppError(t *testing.T) {
	t.Run("普通错误包装为内部错误", func(t *testing.T) {
		appErr := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.NotNil(t, appErr.Err)
	})

	t.Run("提取最外层AppError", func(t *testing.T) {
		inner := New(ErrCodeLoanNotFound, "借阅记录不存在")
		appErr := GetAppError(fmt.Errorf("ctx: %w", inner))
		assert.Equal(t, ErrCodeLoanNotFound, appErr.Code)
	})
}
