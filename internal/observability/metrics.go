package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SweepCollector bundles Prometheus metrics for the link-budget sweep engine
// and provides an HTTP handler to expose them. It satisfies
// core.SweepMetricsRecorder so the engine can drive counters directly.
type SweepCollector struct {
	gatherer prometheus.Gatherer

	Evaluations    *prometheus.CounterVec
	SweepDurations *prometheus.HistogramVec
	FadingDraws    prometheus.Counter

	ScenarioSetups prometheus.Gauge
	ScenarioMedia  prometheus.Gauge
}

// NewSweepCollector registers sweep Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSweepCollector(reg prometheus.Registerer) (*SweepCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uowc_link_evaluations_total",
		Help: "Total link-budget evaluations, labeled by water medium and mode (deterministic or stochastic).",
	}, []string{"water", "mode"})
	evaluations, err := registerCounterVec(reg, evaluations, "uowc_link_evaluations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uowc_sweep_duration_seconds",
		Help:    "Wall-clock duration of full distance sweeps, labeled by setup.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"setup"})
	durations, err = registerHistogramVec(reg, durations, "uowc_sweep_duration_seconds")
	if err != nil {
		return nil, err
	}

	draws, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uowc_fading_draws_total",
		Help: "Total turbulence fading gains drawn for Monte-Carlo batches.",
	}), "uowc_fading_draws_total")
	if err != nil {
		return nil, err
	}

	setups, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uowc_scenario_setups",
		Help: "Number of link setups loaded from the current scenario.",
	}), "uowc_scenario_setups")
	if err != nil {
		return nil, err
	}
	media, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uowc_scenario_media",
		Help: "Number of water media the current run sweeps over.",
	}), "uowc_scenario_media")
	if err != nil {
		return nil, err
	}

	return &SweepCollector{
		gatherer:       gatherer,
		Evaluations:    evaluations,
		SweepDurations: durations,
		FadingDraws:    draws,
		ScenarioSetups: setups,
		ScenarioMedia:  media,
	}, nil
}

// RecordEvaluation counts one link evaluation.
func (c *SweepCollector) RecordEvaluation(water, mode string) {
	if c == nil || c.Evaluations == nil {
		return
	}
	c.Evaluations.WithLabelValues(water, mode).Inc()
}

// AddFadingDraws counts turbulence draws consumed by Monte-Carlo batches.
func (c *SweepCollector) AddFadingDraws(n int) {
	if c == nil || c.FadingDraws == nil || n <= 0 {
		return
	}
	c.FadingDraws.Add(float64(n))
}

// ObserveSweepDuration records the wall-clock time of one full sweep.
func (c *SweepCollector) ObserveSweepDuration(setup string, seconds float64) {
	if c == nil || c.SweepDurations == nil {
		return
	}
	c.SweepDurations.WithLabelValues(setup).Observe(seconds)
}

// SetScenarioCounts updates the scenario gauges after a load.
func (c *SweepCollector) SetScenarioCounts(setups, media int) {
	if c == nil {
		return
	}
	if c.ScenarioSetups != nil {
		c.ScenarioSetups.Set(float64(setups))
	}
	if c.ScenarioMedia != nil {
		c.ScenarioMedia.Set(float64(media))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SweepCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
