package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/library/internal/domain/identity"
)

// Sequence 进程内ID计数器
type Sequence struct {
	mu       sync.Mutex
	counters map[identity.Entity]int
}

// NewSequence 创建计数器,所有实体从0开始
func NewSequence() *Sequence {
	return &Sequence{counters: make(map[identity.Entity]int)}
}

// Next 计数器加一
func (s *Sequence) Next(ctx context.Context, entity identity.Entity) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[entity]++
	return s.counters[entity], nil
}

// Raise 计数器不小于floor
func (s *Sequence) Raise(ctx context.Context, entity identity.Entity, floor int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if floor > s.counters[entity] {
		s.counters[entity] = floor
	}
	return nil
}
