// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 应用私有的指标注册表
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequests 按路由模板、方法与状态码统计请求数
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertypro",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration 请求耗时
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "propertypro",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// CollaboratorCalls 语言模型调用结果: ok, error
	CollaboratorCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertypro",
		Name:      "language_model_calls_total",
		Help:      "Language model calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// TriageFallbacks 分诊回退为默认值的次数
	TriageFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propertypro",
		Name:      "maintenance_triage_fallbacks_total",
		Help:      "Maintenance requests that fell back to default triage values.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		CollaboratorCalls,
		TriageFallbacks,
	)
}

// Handler 暴露 Prometheus 文本格式
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
