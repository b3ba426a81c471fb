// Package circuitbreaker 熔断器
//
// 状态机：
//
//	CLOSED --(连续失败达到阈值)--> OPEN --(冷却到期)--> HALF_OPEN
//	HALF_OPEN --(试探成功)--> CLOSED
//	HALF_OPEN --(试探失败)--> OPEN
//
// 用于保护对消息队列的发布：Broker宕机时快速失败，不拖慢借还书请求。
// 半开状态同一时刻只放行一个试探请求。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/xiebiao/library/pkg/metrics"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

const (
	// DefaultFailures 默认连续失败5次打开
	DefaultFailures = 5
	// DefaultCooldown 默认打开30秒后试探
	DefaultCooldown = 30 * time.Second
)

// Config 熔断器配置，零值使用默认值
type Config struct {
	Failures uint32        // 连续失败多少次打开
	Cooldown time.Duration // 打开状态持续时间
}

// ErrOpenState 熔断器打开，请求被拒绝
var ErrOpenState = errors.New("circuit breaker is open")

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name      string
	threshold uint32
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增，丢弃跨代的请求结果
	failures      uint32 // CLOSED状态下的连续失败次数
	trialling     bool   // HALF_OPEN状态下是否已有试探请求
	reopenAt      time.Time
	onStateChange func(name string, from, to State)
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:      name,
		threshold: config.Failures,
		cooldown:  config.Cooldown,
		now:       time.Now,
		state:     StateClosed,
	}
	if cb.threshold == 0 {
		cb.threshold = DefaultFailures
	}
	if cb.cooldown <= 0 {
		cb.cooldown = DefaultCooldown
	}
	metrics.SetCircuitBreakerState(name, int(StateClosed))
	return cb
}

// SetStateChangeCallback 设置状态变化回调（在锁内调用，回调中不要再访问熔断器）
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 通过熔断器执行请求
// 熔断器打开（或半开且已有试探请求）时直接返回ErrOpenState，不调用req
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.admit()
	if err != nil {
		metrics.RecordCircuitBreakerRequest(cb.name, "rejected")
		return err
	}

	err = req()
	cb.settle(generation, err == nil)

	if err != nil {
		metrics.RecordCircuitBreakerRequest(cb.name, "failure")
	} else {
		metrics.RecordCircuitBreakerRequest(cb.name, "success")
	}
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	return cb.state
}

func (cb *CircuitBreaker) admit() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	switch cb.state {
	case StateOpen:
		return cb.generation, ErrOpenState
	case StateHalfOpen:
		if cb.trialling {
			return cb.generation, ErrOpenState
		}
		cb.trialling = true
	}
	return cb.generation, nil
}

func (cb *CircuitBreaker) settle(generation uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	if generation != cb.generation {
		return
	}

	switch cb.state {
	case StateClosed:
		if success {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		if success {
			cb.setState(StateClosed)
		} else {
			cb.setState(StateOpen)
		}
	}
}

// refresh 冷却到期时进入半开
func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && !cb.now().Before(cb.reopenAt) {
		cb.setState(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.failures = 0
	cb.trialling = false
	if state == StateOpen {
		cb.reopenAt = cb.now().Add(cb.cooldown)
	}

	metrics.SetCircuitBreakerState(cb.name, int(state))
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}
