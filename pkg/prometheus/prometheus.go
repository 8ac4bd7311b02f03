// Package prometheus provides a formz.MetricsProvider backed by
// prometheus/client_golang collectors.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zoobzio/formz"
)

// DefaultNamespace is the metric namespace used when none is given.
const DefaultNamespace = "formz"

// Provider records controller and feed events as Prometheus metrics.
type Provider struct {
	stateTransitions   *prom.CounterVec
	validations        *prom.CounterVec
	validationDuration prom.Histogram
	effectsApplied     prom.Counter
	submits            *prom.CounterVec
	feedChanges        prom.Counter
}

// New registers the formz collectors on reg under namespace. A nil reg uses
// the default registerer; an empty namespace uses DefaultNamespace.
func New(reg prom.Registerer, namespace string) *Provider {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Provider{
		stateTransitions: factory.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: "form",
				Name:      "state_transitions_total",
				Help:      "Total number of form state transitions",
			},
			[]string{"from", "to"},
		),
		validations: factory.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: "form",
				Name:      "validations_total",
				Help:      "Total number of validation passes by result",
			},
			[]string{"result"},
		),
		validationDuration: factory.NewHistogram(
			prom.HistogramOpts{
				Namespace: namespace,
				Subsystem: "form",
				Name:      "validation_duration_seconds",
				Help:      "Time spent inside the form validator",
				Buckets:   prom.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		effectsApplied: factory.NewCounter(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: "form",
				Name:      "effects_applied_total",
				Help:      "Total number of effects that activated",
			},
		),
		submits: factory.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: "form",
				Name:      "submits_total",
				Help:      "Total number of submit calls by outcome",
			},
			[]string{"outcome"},
		),
		feedChanges: factory.NewCounter(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "changes_total",
				Help:      "Total number of documents received by feeds",
			},
		),
	}
}

// OnStateChange implements formz.MetricsProvider.
func (p *Provider) OnStateChange(from, to formz.State) {
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// OnValidation implements formz.MetricsProvider.
func (p *Provider) OnValidation(valid bool, duration time.Duration) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	p.validations.WithLabelValues(result).Inc()
	p.validationDuration.Observe(duration.Seconds())
}

// OnEffectsApplied implements formz.MetricsProvider.
func (p *Provider) OnEffectsApplied(count int) {
	p.effectsApplied.Add(float64(count))
}

// OnSubmit implements formz.MetricsProvider.
func (p *Provider) OnSubmit(outcome formz.SubmitOutcome) {
	p.submits.WithLabelValues(string(outcome)).Inc()
}

// OnFeedChange implements formz.MetricsProvider.
func (p *Provider) OnFeedChange() {
	p.feedChanges.Inc()
}

var _ formz.MetricsProvider = (*Provider)(nil)
