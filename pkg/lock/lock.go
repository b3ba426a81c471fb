// Package lock 按key互斥
//
// 借书、还书、修改图书、对账都以"book:<id>"为key加锁，
// 保证同一本书同一时刻只有一个写者。单进程部署用KeyedMutex，
// 多实例部署用Redis实现（internal/infrastructure/persistence/redis）。
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLockTimeout 获取锁超时
var ErrLockTimeout = errors.New("获取锁超时")

// Unlock 释放锁，重复调用是安全的
type Unlock func()

// Locker 按key加锁
// Lock阻塞直到获得锁或ctx结束
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// BookKey 图书锁的key
func BookKey(bookID int) string {
	return fmt.Sprintf("book:%d", bookID)
}

// LoanKey 借阅记录锁的key,仅用于快照中没有图书的借阅记录
func LoanKey(loanID int) string {
	return fmt.Sprintf("loan:%d", loanID)
}

// KeyedMutex 进程内按key互斥
// 每个key一个容量为1的channel，支持ctx取消；无人持有或等待的key会被回收
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex 创建进程内锁
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock 获取key对应的锁
func (m *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(key, e)
		})
	}, nil
}

func (m *KeyedMutex) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// Len 当前被持有或等待的key数量
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
