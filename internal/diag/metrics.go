package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 进程内私有注册表；不暴露 HTTP，仅按需落盘为文本格式。
// - saltenc_op_total{comp,stage,result}
// - saltenc_error_total{comp,code}
// - saltenc_op_duration_ms{comp,stage}
// - saltenc_events_total{outcome}
var registry = prometheus.NewRegistry()

var (
	opTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "saltenc_op_total",
			Help: "Component operations by stage and result",
		},
		[]string{"comp", "stage", "result"},
	)

	errorTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "saltenc_error_total",
			Help: "Classified errors by component",
		},
		[]string{"comp", "code"},
	)

	opDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saltenc_op_duration_ms",
			Help:    "Stage duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"comp", "stage"},
	)

	eventsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "saltenc_events_total",
			Help: "Build-order lines by outcome",
		},
		[]string{"outcome"},
	)
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	opTotal.WithLabelValues(comp, stage, result).Inc()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	errorTotal.WithLabelValues(comp, code).Inc()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	opDuration.WithLabelValues(comp, stage).Observe(float64(durMS))
}

// AddEvents 按结果累加行数（emitted|filtered|malformed|unresolved）。
func AddEvents(outcome string, n int) {
	if n <= 0 {
		return
	}
	eventsTotal.WithLabelValues(outcome).Add(float64(n))
}

// WriteMetrics 以 Prometheus 文本格式原子写出全部指标。
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
