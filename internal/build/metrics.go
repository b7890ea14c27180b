package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build metrics, registered on the default registry. The dev server exposes
// them on /metrics.
var (
	buildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "glyph",
		Name:      "builds_total",
		Help:      "Total number of project builds",
	})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "glyph",
		Name:      "build_duration_seconds",
		Help:      "Whole-project build duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	compileResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glyph",
		Name:      "components_total",
		Help:      "Per-component compile outcomes",
	}, []string{"result"})
)
