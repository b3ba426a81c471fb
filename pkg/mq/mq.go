// Package mq RabbitMQ消息发布
//
// 借还书成功后发布领域事件（loan.borrowed / loan.returned），供通知、统计等下游订阅。
// 发布是尽力而为的：失败只记日志，不回滚已完成的借还书。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

// Publisher 消息发布者（Topic Exchange）
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp.Channel不保证并发发布安全
	log      *zap.Logger
}

// NewPublisher 连接RabbitMQ并声明持久化Exchange
func NewPublisher(url, exchange, exchangeType string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log = log.Named("mq")
	log.Info("消息发布者已创建", zap.String("exchange", exchange), zap.String("type", exchangeType))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish 发布JSON消息（持久化投递）
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	p.mu.Unlock()

	metrics.RecordPublish(p.exchange, routingKey, err)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.log.Debug("消息已发布", zap.String("routing_key", routingKey), zap.ByteString("body", body))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// =========================================
// 熔断保护
// =========================================

// EventPublisher 发布接口，Publisher与GuardedPublisher都实现它
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// GuardedPublisher 通过熔断器发布，Broker持续失败时快速返回ErrOpenState
type GuardedPublisher struct {
	next    EventPublisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedPublisher 包装发布者
func NewGuardedPublisher(next EventPublisher, breaker *circuitbreaker.CircuitBreaker) *GuardedPublisher {
	return &GuardedPublisher{next: next, breaker: breaker}
}

// Publish 发布消息
func (g *GuardedPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return g.breaker.Execute(func() error {
		return g.next.Publish(ctx, routingKey, message)
	})
}

// NopPublisher 消息队列未启用时使用
type NopPublisher struct{}

// Publish 丢弃消息
func (NopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}
