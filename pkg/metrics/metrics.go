// Package metrics 提供 Prometheus 指标集合：HTTP、购物车、守卫、存储与远端 API
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 购物车状态迁移计数
	CartTransitionsTotal *prometheus.CounterVec
	// 购物车快照写入失败计数
	CartPersistFailures *prometheus.CounterVec
	// 内存中的购物车数量
	CartStoresActive prometheus.Gauge

	// 守卫拒绝计数
	GuardDenialsTotal *prometheus.CounterVec

	// 键值存储操作计数
	StorageOpsTotal *prometheus.CounterVec

	// 远端 API 请求计数
	APIRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New 创建指标实例并注册到独立的 registry
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CartTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "transitions_total",
			Help:      "Cart state transitions by operation",
		}, []string{"op"}),
		CartPersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "persist_failures_total",
			Help:      "Cart snapshot writes that failed and were dropped",
		}, []string{"op"}),
		CartStoresActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "stores_active",
			Help:      "Session cart stores held in memory",
		}),
		GuardDenialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "denials_total",
			Help:      "Navigations rejected by an access guard",
		}, []string{"guard"}),
		StorageOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "ops_total",
			Help:      "Durable key-value store operations",
		}, []string{"backend", "op", "result"}),
		APIRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the remote REST API",
		}, []string{"endpoint", "result"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CartTransitionsTotal,
		m.CartPersistFailures,
		m.CartStoresActive,
		m.GuardDenialsTotal,
		m.StorageOpsTotal,
		m.APIRequestsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCartTransition 记录一次购物车迁移
func (m *Metrics) ObserveCartTransition(op string) {
	if m == nil {
		return
	}
	m.CartTransitionsTotal.WithLabelValues(op).Inc()
}

// ObserveCartPersistFailure 记录一次丢弃的快照写入
func (m *Metrics) ObserveCartPersistFailure(op string) {
	if m == nil {
		return
	}
	m.CartPersistFailures.WithLabelValues(op).Inc()
}

// SetCartStores 更新内存购物车数量
func (m *Metrics) SetCartStores(n int) {
	if m == nil {
		return
	}
	m.CartStoresActive.Set(float64(n))
}

// ObserveGuardDenial 记录一次守卫拒绝
func (m *Metrics) ObserveGuardDenial(guard string) {
	if m == nil {
		return
	}
	m.GuardDenialsTotal.WithLabelValues(guard).Inc()
}

// ObserveStorageOp 记录一次存储操作
func (m *Metrics) ObserveStorageOp(backend, op string, err error) {
	if m == nil {
		return
	}
	m.StorageOpsTotal.WithLabelValues(backend, op, result(err)).Inc()
}

// ObserveAPIRequest 记录一次远端 API 调用
func (m *Metrics) ObserveAPIRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(endpoint, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
