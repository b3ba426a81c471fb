package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	s := NewSaga(5*time.Second, zap.NewNop())
	s.AddStep("图书置为不可借",
		func(ctx context.Context) error {
			executed = append(executed, "图书置为不可借")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "图书恢复可借")
			return nil
		},
	)
	s.AddStep("写入借阅记录",
		func(ctx context.Context) error {
			executed = append(executed, "写入借阅记录")
			return nil
		},
		nil,
	)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"图书置为不可借", "写入借阅记录"}, executed, "不应执行任何补偿")
}

func TestSaga_Execute_FailureAndCompensate(t *testing.T) {
	executed := make([]string, 0)
	storeErr := errors.New("write timeout")

	s := NewSaga(5*time.Second, zap.NewNop())
	s.AddStep("步骤A",
		func(ctx context.Context) error {
			executed = append(executed, "A")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "补偿A")
			return nil
		},
	)
	s.AddStep("步骤B",
		func(ctx context.Context) error {
			executed = append(executed, "B")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "补偿B")
			return nil
		},
	)
	s.AddStep("步骤C",
		func(ctx context.Context) error {
			return storeErr
		},
		func(ctx context.Context) error {
			executed = append(executed, "补偿C")
			return nil
		},
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr, "应保留原始错误")
	assert.Equal(t, []string{"A", "B", "补偿B", "补偿A"}, executed, "补偿应逆序执行且不包含失败步骤")
}

func TestSaga_Execute_CompensationFailure(t *testing.T) {
	storeErr := errors.New("insert failed")
	restoreErr := errors.New("restore failed")

	s := NewSaga(0, nil)
	s.AddStep("步骤A",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return restoreErr },
	)
	s.AddStep("步骤B",
		func(ctx context.Context) error { return storeErr },
		nil,
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, restoreErr)

	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "步骤A", compErr.Step)
}

func TestSaga_Execute_Timeout(t *testing.T) {
	compensated := false

	s := NewSaga(20*time.Millisecond, zap.NewNop())
	s.AddStep("慢步骤",
		func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		},
		func(ctx context.Context) error {
			// 补偿Context不应随超时取消
			compensated = ctx.Err() == nil
			return nil
		},
	)
	s.AddStep("后续步骤",
		func(ctx context.Context) error {
			t.Fatal("超时后不应继续执行")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, compensated, "超时应触发补偿")
}
