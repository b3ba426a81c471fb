// Package metrics 提供基于Prometheus的指标收集
//
// 指标分为四组：
//   - HTTP请求：总数、耗时、处理中数量
//   - 借阅业务：借出、拒绝（按原因）、归还、操作耗时、可借状态修复次数、ID分配
//   - Saga与熔断器：执行结果、补偿次数、熔断状态
//   - 消息队列：发布总数
//
// 所有指标在InitMetrics中注册到默认Registry，由/metrics端点暴露。
// 业务代码调用Record*便捷函数，便捷函数内部保证已初始化。
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// LoansBorrowedTotal 借书成功总数
	LoansBorrowedTotal prometheus.Counter

	// BorrowRejectionsTotal 借书被拒绝总数
	// 标签：reason（book_not_found/book_unavailable/reader_not_found/invalid_id）
	BorrowRejectionsTotal *prometheus.CounterVec

	// LoansReturnedTotal 还书总数（不含重复归还的空操作）
	LoansReturnedTotal prometheus.Counter

	// LendingOperationDuration 借阅操作耗时
	// 标签：operation（borrow/return/reconcile）
	LendingOperationDuration *prometheus.HistogramVec

	// AvailabilityRepairsTotal 对账修复的图书可借状态次数
	AvailabilityRepairsTotal prometheus.Counter

	// IDsAllocatedTotal 分配的实体ID数量
	// 标签：entity（books/readers/loans）
	IDsAllocatedTotal *prometheus.CounterVec

	// IDReseedsTotal ID冲突后重新扫描计数器的次数
	IDReseedsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数
	// 标签：result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration prometheus.Histogram

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 可重复调用，只注册一次
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	LoansBorrowedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_borrowed_total",
			Help: "借书成功总数",
		},
	)

	BorrowRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_borrow_rejections_total",
			Help: "借书被拒绝总数",
		},
		[]string{"reason"},
	)

	LoansReturnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_returned_total",
			Help: "还书总数",
		},
	)

	LendingOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lending_operation_duration_seconds",
			Help: "借阅操作耗时（秒）",
			// 包含等待图书锁的时间
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	AvailabilityRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "availability_repairs_total",
			Help: "对账修复的图书可借状态次数",
		},
	)

	IDsAllocatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ids_allocated_total",
			Help: "分配的实体ID数量",
		},
		[]string{"entity"},
	)

	IDReseedsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "id_reseeds_total",
			Help: "ID冲突后重新扫描计数器的次数",
		},
		[]string{"entity"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// =========================================
// 通用便捷函数
// =========================================

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// =========================================
// 业务便捷函数
// =========================================

// RecordBorrow 记录一次借书成功
func RecordBorrow() {
	InitMetrics()
	LoansBorrowedTotal.Inc()
}

// RecordBorrowRejected 记录一次借书被拒绝
func RecordBorrowRejected(reason string) {
	InitMetrics()
	BorrowRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordReturn 记录一次还书
func RecordReturn() {
	InitMetrics()
	LoansReturnedTotal.Inc()
}

// ObserveLending 记录借阅操作耗时
//
//	defer metrics.ObserveLending("borrow", time.Now())
func ObserveLending(operation string, start time.Time) {
	InitMetrics()
	LendingOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordAvailabilityRepair 记录一次可借状态修复
func RecordAvailabilityRepair() {
	InitMetrics()
	AvailabilityRepairsTotal.Inc()
}

// RecordIDAllocated 记录一次ID分配
func RecordIDAllocated(entity string) {
	InitMetrics()
	IDsAllocatedTotal.WithLabelValues(entity).Inc()
}

// RecordIDReseeded 记录一次计数器重新扫描
func RecordIDReseeded(entity string) {
	InitMetrics()
	IDReseedsTotal.WithLabelValues(entity).Inc()
}

// RecordSaga 记录Saga执行结果与耗时
func RecordSaga(success bool, elapsed time.Duration) {
	InitMetrics()
	result := "success"
	if !success {
		result = "failure"
	}
	SagaExecutionsTotal.WithLabelValues(result).Inc()
	SagaExecutionDuration.Observe(elapsed.Seconds())
}

// RecordSagaCompensation 记录一次补偿
func RecordSagaCompensation() {
	InitMetrics()
	SagaCompensationsTotal.Inc()
}

// SetCircuitBreakerState 记录熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest 记录熔断器请求结果
func RecordCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordPublish 记录消息发布结果
func RecordPublish(exchange, routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}
