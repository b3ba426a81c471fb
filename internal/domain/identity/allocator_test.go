package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
)

func scanOf(ids ...int) identity.ScanFunc {
	return func(context.Context) ([]int, error) { return ids, nil }
}

func TestNextFromScan(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"空集合", nil, 1},
		{"单个", []int{1}, 2},
		{"乱序取最大", []int{1, 3, 7}, 8},
		{"有空洞", []int{2, 9, 4}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.NextFromScan(tt.ids))
		})
	}
}

func TestAllocator_SeedsFromExistingData(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())

	id, err := alloc.NextID(ctx, identity.Books, scanOf(1, 3, 7))
	require.NoError(t, err)
	assert.Equal(t, 8, id)

	// 第二次不再扫描,继续递增
	id, err = alloc.NextID(ctx, identity.Books, scanOf())
	require.NoError(t, err)
	assert.Equal(t, 9, id)
}

func TestAllocator_EmptyCollectionStartsAtOne(t *testing.T) {
	alloc := identity.NewAllocator(memory.NewSequence())

	id, err := alloc.NextID(context.Background(), identity.Readers, scanOf())
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestAllocator_NoReuseAfterDelete(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())

	first, err := alloc.NextID(ctx, identity.Loans, scanOf())
	require.NoError(t, err)
	second, err := alloc.NextID(ctx, identity.Loans, scanOf())
	require.NoError(t, err)
	require.Equal(t, first+1, second)

	// 删除最大ID后,下一个ID仍然向前
	third, err := alloc.NextID(ctx, identity.Loans, scanOf(first))
	require.NoError(t, err)
	assert.Equal(t, second+1, third)
}

func TestAllocator_Observe(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())

	require.NoError(t, alloc.Observe(ctx, identity.Books, 42))
	require.NoError(t, alloc.Observe(ctx, identity.Books, 0))

	id, err := alloc.NextID(ctx, identity.Books, scanOf(42))
	require.NoError(t, err)
	assert.Equal(t, 43, id)
}

func TestAllocator_InvalidEntity(t *testing.T) {
	alloc := identity.NewAllocator(memory.NewSequence())

	_, err := alloc.NextID(context.Background(), identity.Entity("orders"), scanOf())
	assert.ErrorIs(t, err, identity.ErrInvalidEntity)
	assert.ErrorIs(t, alloc.Observe(context.Background(), identity.Entity(""), 1), identity.ErrInvalidEntity)
}

func TestAllocator_ScanError(t *testing.T) {
	alloc := identity.NewAllocator(memory.NewSequence())
	boom := errors.New("store down")

	_, err := alloc.NextID(context.Background(), identity.Books, func(context.Context) ([]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// 播种失败后下次重新扫描
	id, err := alloc.NextID(context.Background(), identity.Books, scanOf(5))
	require.NoError(t, err)
	assert.Equal(t, 6, id)
}

func TestAllocator_ConcurrentDistinct(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())

	const n = 100
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.NextID(ctx, identity.Loans, scanOf(1, 2))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	assert.False(t, ids[0])
	assert.False(t, ids[2], "已有ID不会被再次分配")
}

// wipeableSequence 模拟计数器丢失数据（如Redis被清空）
type wipeableSequence struct {
	*memory.Sequence
}

func (s *wipeableSequence) wipe() {
	s.Sequence = memory.NewSequence()
}

// uniqueStore 以ID为唯一键的最小存储
type uniqueStore struct {
	ids map[int]bool
	dup error
}

func newUniqueStore() *uniqueStore {
	return &uniqueStore{ids: make(map[int]bool), dup: errors.New("ID已存在")}
}

func (s *uniqueStore) insert(_ context.Context, id int) error {
	if s.ids[id] {
		return s.dup
	}
	s.ids[id] = true
	return nil
}

func (s *uniqueStore) scan(context.Context) ([]int, error) {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestAllocator_CreateReseedsAfterCounterLoss(t *testing.T) {
	ctx := context.Background()
	seq := &wipeableSequence{Sequence: memory.NewSequence()}
	alloc := identity.NewAllocator(seq)
	store := newUniqueStore()

	for want := 1; want <= 3; want++ {
		id, err := alloc.Create(ctx, identity.Books, store.scan, store.dup, store.insert)
		require.NoError(t, err)
		require.Equal(t, want, id)
	}

	// 计数器从0重新开始，第一次分配撞上已有的1，重新扫描后继续向前
	seq.wipe()
	id, err := alloc.Create(ctx, identity.Books, store.scan, store.dup, store.insert)
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	id, err = alloc.Create(ctx, identity.Books, store.scan, store.dup, store.insert)
	require.NoError(t, err)
	assert.Equal(t, 5, id)
}

func TestAllocator_CreateRetriesOnlyOnce(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())
	dup := errors.New("ID已存在")

	calls := 0
	_, err := alloc.Create(ctx, identity.Loans, scanOf(), dup, func(context.Context, int) error {
		calls++
		return dup
	})
	assert.ErrorIs(t, err, dup)
	assert.Equal(t, 2, calls)
}

func TestAllocator_CreateDoesNotRetryOtherErrors(t *testing.T) {
	ctx := context.Background()
	alloc := identity.NewAllocator(memory.NewSequence())
	boom := errors.New("store down")

	calls := 0
	_, err := alloc.Create(ctx, identity.Readers, scanOf(), errors.New("ID已存在"), func(context.Context, int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
