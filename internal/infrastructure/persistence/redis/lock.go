package redis

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/lock"
)

//go:embed release_lock.lua
var releaseLockLua string

var releaseLockScript = redis.NewScript(releaseLockLua)

// releaseTimeout 释放锁的超时，调用方ctx已取消时也要尽力释放
const releaseTimeout = 2 * time.Second

// Locker 基于Redis的分布式锁，多实例部署时保证同一本书只有一个写者
//
// Key设计：
//   - lock:book:{book_id} 值为本次加锁的随机token，带TTL
//
// 加锁：SET key token NX PX ttl，失败则按retry间隔重试直到ctx结束
// 解锁：Lua脚本比较token后DEL，避免误删TTL过期后被别人拿到的锁
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

// NewLocker 创建分布式锁
func NewLocker(client *redis.Client, ttl, retry time.Duration, log *zap.Logger) *Locker {
	return &Locker{
		client: client,
		ttl:    ttl,
		retry:  retry,
		log:    log.Named("lock"),
	}
}

// Lock 获取锁
func (l *Locker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	redisKey := "lock:" + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %w", lock.ErrLockTimeout, key, ctx.Err())
			}
			return nil, apperrors.WrapCode(err, apperrors.ErrCodeLockError, "获取锁失败")
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", lock.ErrLockTimeout, key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()

			if err := releaseLockScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				// 释放失败时锁在TTL后自动过期
				l.log.Warn("释放锁失败", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}, nil
}
