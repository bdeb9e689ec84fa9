// Package metrics 定义服务暴露给 Prometheus 的业务指标。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	groupOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groupchat",
			Name:      "group_operations_total",
			Help:      "Number of group lifecycle and messaging operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	cascadeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groupchat",
			Name:      "cascade_failures_total",
			Help:      "Number of failed cascade cleanup steps after a group delete.",
		},
		[]string{"step"},
	)

	cascadeRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groupchat",
			Name:      "cascade_retries_total",
			Help:      "Number of cascade cleanup steps re-run by the background worker, by outcome.",
		},
		[]string{"step", "result"},
	)
)

func init() {
	prometheus.MustRegister(groupOperations, cascadeFailures, cascadeRetries)
}

// ObserveOperation 记录一次操作的结果，result 为 "ok" 或错误分类名。
func ObserveOperation(operation, result string) {
	groupOperations.WithLabelValues(operation, result).Inc()
}

// ObserveCascadeFailure 记录一次级联清理步骤失败。
func ObserveCascadeFailure(step string) {
	cascadeFailures.WithLabelValues(step).Inc()
}

// ObserveCascadeRetry 记录一次后台重试的结果。
func ObserveCascadeRetry(step string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	cascadeRetries.WithLabelValues(step, result).Inc()
}

// Handler 返回 /metrics 端点。
func Handler() http.Handler {
	return promhttp.Handler()
}
