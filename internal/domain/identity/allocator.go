// Package identity 实体ID分配
//
// ID规则：
//  1. 集合为空时分配1，否则分配"已有最大ID+1"
//  2. 0表示"尚未分配"，永远不会被分配
//  3. 删除后ID不复用（计数器只增不减）
//
// 扫描取最大值再加一在并发下会分配出重复ID，所以运行时由原子递增的Sequence分配：
// 进程内首次为某个实体分配时，先扫描已有数据把计数器抬高到最大ID，再INCR。
// 计数器丢失数据（如Redis被清空）后从头计数，写入时撞上唯一键，Create会重新扫描一次。
package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/xiebiao/library/pkg/metrics"
)

// Entity 需要分配ID的实体集合
type Entity string

const (
	Books   Entity = "books"
	Readers Entity = "readers"
	Loans   Entity = "loans"
)

// ErrInvalidEntity 未知的实体集合
var ErrInvalidEntity = errors.New("未知的实体集合")

// Valid 是否为已知实体
func (e Entity) Valid() bool {
	switch e {
	case Books, Readers, Loans:
		return true
	}
	return false
}

// Sequence 原子递增计数器
// 实现：memory（互斥锁）、mongo（$inc）、mysql（行锁）、redis（INCR）
type Sequence interface {
	// Next 计数器加一并返回新值
	Next(ctx context.Context, entity Entity) (int, error)

	// Raise 保证计数器不小于floor（只升不降）
	Raise(ctx context.Context, entity Entity, floor int) error
}

// ScanFunc 返回集合中已有的全部ID
type ScanFunc func(ctx context.Context) ([]int, error)

// NextFromScan 扫描式分配：空集合返回1，否则返回最大值+1
// 只适合单写者场景（初始化数据、测试），并发分配请使用Allocator
func NextFromScan(ids []int) int {
	maxID := 0
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Allocator 并发安全的ID分配器
type Allocator struct {
	seq Sequence

	mu     sync.Mutex
	seeded map[Entity]bool
}

// NewAllocator 创建分配器
func NewAllocator(seq Sequence) *Allocator {
	return &Allocator{
		seq:    seq,
		seeded: make(map[Entity]bool),
	}
}

// NextID 为实体分配下一个ID
// scan仅在本进程首次分配时调用，用于兼容计数器之外写入的历史数据
func (a *Allocator) NextID(ctx context.Context, entity Entity, scan ScanFunc) (int, error) {
	if !entity.Valid() {
		return 0, ErrInvalidEntity
	}

	if err := a.seed(ctx, entity, scan); err != nil {
		return 0, err
	}

	id, err := a.seq.Next(ctx, entity)
	if err != nil {
		return 0, err
	}
	metrics.RecordIDAllocated(string(entity))
	return id, nil
}

// Create 分配ID并调用insert写入
// insert返回dup说明计数器落后于已有数据：清除扫描标记，重新扫描后再分配一次。
// 第二次仍失败时返回该错误
func (a *Allocator) Create(ctx context.Context, entity Entity, scan ScanFunc, dup error, insert func(ctx context.Context, id int) error) (int, error) {
	id, err := a.NextID(ctx, entity, scan)
	if err != nil {
		return 0, err
	}
	err = insert(ctx, id)
	if err == nil || dup == nil || !errors.Is(err, dup) {
		return id, err
	}

	metrics.RecordIDReseeded(string(entity))
	a.Reseed(entity)
	if id, err = a.NextID(ctx, entity, scan); err != nil {
		return 0, err
	}
	return id, insert(ctx, id)
}

// Reseed 下次分配前重新扫描已有数据
func (a *Allocator) Reseed(entity Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.seeded, entity)
}

// Observe 调用方自带ID写入时调用，保证后续分配不会与之冲突
func (a *Allocator) Observe(ctx context.Context, entity Entity, id int) error {
	if !entity.Valid() {
		return ErrInvalidEntity
	}
	if id <= 0 {
		return nil
	}
	return a.seq.Raise(ctx, entity, id)
}

func (a *Allocator) seed(ctx context.Context, entity Entity, scan ScanFunc) error {
	// 持锁扫描：并发的首次分配只扫描一次
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seeded[entity] || scan == nil {
		return nil
	}

	ids, err := scan(ctx)
	if err != nil {
		return err
	}
	if err := a.seq.Raise(ctx, entity, NextFromScan(ids)-1); err != nil {
		return err
	}
	a.seeded[entity] = true
	return nil
}
