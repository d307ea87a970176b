package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"moviegrip/internal/async"
)

// Outcome labels for SearchesTotal
const (
	OutcomeIssued   = "issued"
	OutcomeResolved = "resolved"
	OutcomeRejected = "rejected"
)

// SearchesTotal counts searches by outcome.
var SearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moviegrip_searches_total",
		Help: "Searches issued and settled, by outcome",
	},
	[]string{"outcome"},
)

// SearchDuration tracks time from issue to settle of the current search.
var SearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "moviegrip_search_duration_seconds",
		Help:    "Search latency from issue to settle",
		Buckets: prometheus.DefBuckets,
	},
)

// StaleResultsTotal counts results discarded because a newer search, a reset
// or teardown superseded them.
var StaleResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moviegrip_stale_results_total",
		Help: "Settled results that were discarded",
	},
	[]string{"reason"},
)

// DebounceFlushesTotal counts debounce timer fires.
var DebounceFlushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moviegrip_debounce_flushes_total",
		Help: "Debounce timer fires, by timer and reason",
	},
	[]string{"timer", "reason"},
)

// Recorder feeds the collectors above. The zero value is ready to use.
type Recorder struct{}

// NewRecorder returns a Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OperationSettled implements async.Observer
func (r *Recorder) OperationSettled(status async.Status, elapsed time.Duration) {
	switch status {
	case async.StatusResolved:
		SearchesTotal.WithLabelValues(OutcomeResolved).Inc()
	case async.StatusRejected:
		SearchesTotal.WithLabelValues(OutcomeRejected).Inc()
	default:
		return
	}
	SearchDuration.Observe(elapsed.Seconds())
}

// OperationDiscarded implements async.Observer
func (r *Recorder) OperationDiscarded(reason string) {
	StaleResultsTotal.WithLabelValues(reason).Inc()
}

// SearchIssued counts a search handed to the controller
func (r *Recorder) SearchIssued() {
	SearchesTotal.WithLabelValues(OutcomeIssued).Inc()
}

// TimerFired counts a debounce fire
func (r *Recorder) TimerFired(timer, reason string) {
	DebounceFlushesTotal.WithLabelValues(timer, reason).Inc()
}

var _ async.Observer = (*Recorder)(nil)
