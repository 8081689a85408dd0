// Package metrics exposes feature events as Prometheus series.
package metrics

import (
	"net/http"

	"gofreeze/feature"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reporter is a feature.Reporter that keeps event counters and per-feature
// gauges in its own registry.
type Reporter struct {
	registry  *prometheus.Registry
	events    *prometheus.CounterVec
	running   *prometheus.GaugeVec
	modifying *prometheus.GaugeVec
	pairs     *prometheus.GaugeVec
	value     *prometheus.GaugeVec
}

func NewReporter() *Reporter {
	r := &Reporter{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gofreeze",
			Name:      "events_total",
			Help:      "Feature events by feature, type and failure kind.",
		}, []string{"feature", "type", "kind"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gofreeze",
			Name:      "feature_running",
			Help:      "1 while the feature's write task is active.",
		}, []string{"feature"}),
		modifying: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gofreeze",
			Name:      "feature_modifying",
			Help:      "1 while the feature's pair modify task is active.",
		}, []string{"feature"}),
		pairs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gofreeze",
			Name:      "feature_pairs",
			Help:      "Matched pairs held by the feature.",
		}, []string{"feature"}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gofreeze",
			Name:      "feature_enabled_value",
			Help:      "Last enabled value set at runtime.",
		}, []string{"feature"}),
	}

	r.registry.MustRegister(r.events, r.running, r.modifying, r.pairs, r.value)

	return r
}

// Registry returns the registry holding the reporter's collectors.
func (r *Reporter) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Reporter) Report(e feature.Event) {
	r.events.WithLabelValues(e.Feature, string(e.Type), string(e.Kind)).Inc()

	switch e.Type {
	case feature.EventStarted:
		r.running.WithLabelValues(e.Feature).Set(1)
	case feature.EventStopped:
		r.running.WithLabelValues(e.Feature).Set(0)
	case feature.EventModifyStarted:
		r.modifying.WithLabelValues(e.Feature).Set(1)
	case feature.EventModifyStopped:
		r.modifying.WithLabelValues(e.Feature).Set(0)
	case feature.EventPairMatched, feature.EventScanFinished, feature.EventScanStarted, feature.EventPairsCleared:
		r.pairs.WithLabelValues(e.Feature).Set(float64(e.Pairs))
	case feature.EventValueChanged:
		r.value.WithLabelValues(e.Feature).Set(e.Value)
	}
}
