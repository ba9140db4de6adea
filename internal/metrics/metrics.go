// Package metrics 记录解析结果与请求耗时
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riverfjs/devnotes-go/internal/types"
)

// Recorder 持有 devnotes 的 Prometheus 指标。nil Recorder 的所有方法都是空操作。
type Recorder struct {
	interpretations *prometheus.CounterVec
	diagrams        *prometheus.CounterVec
	duration        prometheus.Histogram
}

// New 在 reg 上注册指标
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		interpretations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devnotes_interpretations_total",
			Help: "Total response interpretations by shape and outcome",
		}, []string{"shape", "outcome"}),
		diagrams: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devnotes_diagrams_total",
			Help: "Total diagrams extracted by kind",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "devnotes_request_duration_seconds",
			Help:    "Duration of analysis requests to the chat endpoint",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// ObserveResult 记录一次解析结果
func (r *Recorder) ObserveResult(res types.ParsedResult) {
	if r == nil {
		return
	}
	r.interpretations.WithLabelValues(res.Shape.String(), res.Outcome.String()).Inc()
}

// ObserveDiagram 记录一个已分类的图表
func (r *Recorder) ObserveDiagram(kind types.DiagramKind) {
	if r == nil {
		return
	}
	r.diagrams.WithLabelValues(kind.String()).Inc()
}

// ObserveRequest 记录请求耗时
func (r *Recorder) ObserveRequest(d time.Duration) {
	if r == nil {
		return
	}
	r.duration.Observe(d.Seconds())
}
