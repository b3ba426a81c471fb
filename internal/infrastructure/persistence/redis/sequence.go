package redis

import (
	"context"
	_ "embed"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/identity"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

//go:embed raise_sequence.lua
var raiseSequenceLua string

var raiseSequenceScript = redis.NewScript(raiseSequenceLua)

// Sequence 基于INCR的ID计数器，多实例共享
//
// Key设计：
//   - seq:{entity} 当前最大ID
type Sequence struct {
	client *redis.Client
}

// NewSequence 创建计数器
func NewSequence(client *redis.Client) *Sequence {
	return &Sequence{client: client}
}

// Next 计数器加一
func (s *Sequence) Next(ctx context.Context, entity identity.Entity) (int, error) {
	id, err := s.client.Incr(ctx, sequenceKey(entity)).Result()
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "分配ID失败")
	}
	return int(id), nil
}

// Raise 计数器不小于floor
func (s *Sequence) Raise(ctx context.Context, entity identity.Entity, floor int) error {
	if err := raiseSequenceScript.Run(ctx, s.client, []string{sequenceKey(entity)}, floor).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "更新ID计数器失败")
	}
	return nil
}

func sequenceKey(entity identity.Entity) string {
	return "seq:" + string(entity)
}
