// Package metrics tracks run statistics for one scrape.
//
// Counters live on a private prometheus registry so a run can be exported as a
// node_exporter textfile without starting an HTTP listener.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "srrc"

// Recorder holds the metrics of a single scrape run. All members are safe for
// concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	WindowsScanned prometheus.Counter
	PagesFetched   prometheus.Counter
	FetchFailures  prometheus.Counter
	EventsParsed   prometheus.Counter
	ParseFailures  prometheus.Counter
	SafetyCapHits  prometheus.Counter
	UniqueEvents   prometheus.Gauge
	RunDuration    prometheus.Gauge
}

// New creates a Recorder with every metric registered and zeroed.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		WindowsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_scanned_total",
			Help:      "Month windows whose pagination finished.",
		}),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Load-more pages fetched successfully.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Load-more requests that failed and ended their window.",
		}),
		EventsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_parsed_total",
			Help:      "Event articles extracted, duplicates included.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Event articles skipped because they could not be parsed.",
		}),
		SafetyCapHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_cap_hits_total",
			Help:      "Windows stopped by the per-window page cap.",
		}),
		UniqueEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unique_events",
			Help:      "Events left after deduplication.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last scrape run.",
		}),
	}

	r.registry.MustRegister(
		r.WindowsScanned,
		r.PagesFetched,
		r.FetchFailures,
		r.EventsParsed,
		r.ParseFailures,
		r.SafetyCapHits,
		r.UniqueEvents,
		r.RunDuration,
	)

	return r
}

// Snapshot returns the current value of every metric keyed by its fully
// qualified name.
func (r *Recorder) Snapshot() (map[string]float64, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	snapshot := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				snapshot[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				snapshot[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	return snapshot, nil
}

// WriteTextfile writes all metrics in the prometheus text format, atomically
// replacing path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
