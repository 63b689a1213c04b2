package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fast_note_import_runs_total",
		Help: "Finished import runs by final state and failure kind.",
	}, []string{"state", "kind"})

	stageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fast_note_import_stage_seconds",
		Help:    "Time spent in each import stage.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})
)

// MetricsObserver records stage durations and run outcomes in the default prometheus registry
// MetricsObserver 记录阶段耗时与导入结果
func MetricsObserver() Observer {
	return ObserverFunc(func(t Transition) {
		if t.From != Idle {
			stageSeconds.WithLabelValues(t.From.String()).Observe(t.Elapsed.Seconds())
		}
		if t.To.Terminal() {
			runsTotal.WithLabelValues(t.To.String(), string(KindOf(t.Err))).Inc()
		}
	})
}
