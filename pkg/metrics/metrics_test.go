package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 重复初始化不会panic（promauto重复注册会panic）
func TestInitMetrics(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			InitMetrics()
		}()
	}
	wg.Wait()

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, LoansBorrowedTotal)
	assert.NotNil(t, BorrowRejectionsTotal)
	assert.NotNil(t, SagaExecutionsTotal)
}

func TestRecordBorrowAndReturn(t *testing.T) {
	InitMetrics()
	borrowed := getCounterValue(t, LoansBorrowedTotal)
	returned := getCounterValue(t, LoansReturnedTotal)

	RecordBorrow()
	RecordBorrow()
	RecordReturn()

	assert.Equal(t, borrowed+2, getCounterValue(t, LoansBorrowedTotal))
	assert.Equal(t, returned+1, getCounterValue(t, LoansReturnedTotal))
}

func TestRecordBorrowRejected(t *testing.T) {
	InitMetrics()

	RecordBorrowRejected("book_unavailable")
	RecordBorrowRejected("book_unavailable")
	RecordBorrowRejected("reader_not_found")

	assert.Equal(t, float64(2), getCounterVecValue(t, BorrowRejectionsTotal, map[string]string{"reason": "book_unavailable"}))
	assert.Equal(t, float64(1), getCounterVecValue(t, BorrowRejectionsTotal, map[string]string{"reason": "reader_not_found"}))
}

func TestRecordSaga(t *testing.T) {
	InitMetrics()

	RecordSaga(true, 10*time.Millisecond)
	RecordSaga(false, 20*time.Millisecond)
	RecordSagaCompensation()

	assert.Equal(t, float64(1), getCounterVecValue(t, SagaExecutionsTotal, map[string]string{"result": "success"}))
	assert.Equal(t, float64(1), getCounterVecValue(t, SagaExecutionsTotal, map[string]string{"result": "failure"}))
	assert.Equal(t, uint64(2), getHistogramCount(t, SagaExecutionDuration))
	assert.Equal(t, float64(1), getCounterValue(t, SagaCompensationsTotal))
}

func TestObserveLending(t *testing.T) {
	InitMetrics()

	ObserveLending("borrow", time.Now().Add(-50*time.Millisecond))
	ObserveLending("borrow", time.Now())
	ObserveLending("return", time.Now())

	assert.Equal(t, uint64(2), getHistogramVecCount(t, LendingOperationDuration, map[string]string{"operation": "borrow"}))
	assert.Equal(t, uint64(1), getHistogramVecCount(t, LendingOperationDuration, map[string]string{"operation": "return"}))
}

func TestGaugeHelpers(t *testing.T) {
	InitMetrics()

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, float64(1), getGaugeValue(t, HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)

	SetCircuitBreakerState("loan-events", 1)
	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "loan-events"}))
}

func TestRecordPublish(t *testing.T) {
	InitMetrics()

	RecordPublish("library.events", "loan.borrowed", nil)
	RecordPublish("library.events", "loan.borrowed", errors.New("broker down"))

	assert.Equal(t, float64(1), getCounterVecValue(t, MessagesPublishedTotal,
		map[string]string{"exchange": "library.events", "routing_key": "loan.borrowed", "result": "success"}))
	assert.Equal(t, float64(1), getCounterVecValue(t, MessagesPublishedTotal,
		map[string]string{"exchange": "library.events", "routing_key": "loan.borrowed", "result": "failure"}))
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric), "读取Counter值失败")
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, counterVec.With(labels).Write(&metric), "读取CounterVec值失败")
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric), "读取Gauge值失败")
	return metric.Gauge.GetValue()
}

// 辅助函数：获取GaugeVec值
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, gaugeVec.With(labels).Write(&metric), "读取GaugeVec值失败")
	return metric.Gauge.GetValue()
}

// 辅助函数：获取Histogram观测次数
func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric), "读取Histogram值失败")
	return metric.Histogram.GetSampleCount()
}

// 辅助函数：获取HistogramVec观测次数
func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	histogram := histogramVec.With(labels)
	require.NoError(t, histogram.(prometheus.Histogram).Write(&metric), "读取HistogramVec值失败")
	return metric.Histogram.GetSampleCount()
}
