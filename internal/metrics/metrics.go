// Package metrics exports sale commit counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Commit outcomes.
const (
	OutcomeCommitted   = "committed"
	OutcomeValidation  = "validation"
	OutcomeConflict    = "conflict"
	OutcomePersistence = "persistence"
)

// Recorder records commit outcomes. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry  *prometheus.Registry
	commits   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	revenue   prometheus.Counter
	itemsSold prometheus.Counter
}

// New builds a Recorder on its own registry, including the Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sale_commits_total",
			Help:      "Sale commit attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pos",
			Name:      "sale_commit_duration_seconds",
			Help:      "Time spent committing a sale.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_revenue_total",
			Help:      "Sum of committed sale totals.",
		}),
		itemsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sale_items_sold_total",
			Help:      "Units sold across committed sales.",
		}),
	}
	reg.MustRegister(
		r.commits,
		r.duration,
		r.revenue,
		r.itemsSold,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCommit records one commit attempt.
func (r *Recorder) ObserveCommit(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.commits.WithLabelValues(outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveSale adds a committed sale's revenue and unit count.
func (r *Recorder) ObserveSale(total float64, units int) {
	if r == nil {
		return
	}
	r.revenue.Add(total)
	r.itemsSold.Add(float64(units))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
