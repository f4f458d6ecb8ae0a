package metrics

import (
	"fmt"

	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ ensemble.Observer = (*Recorder)(nil)

// Recorder exports engine events to Prometheus. It implements
// ensemble.Observer.
type Recorder struct {
	reg        *prometheus.Registry
	decisions  *prometheus.CounterVec
	confidence prometheus.Histogram
	faults     *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	lastScore  prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		decisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_decisions_total",
				Help: "Total number of decisions by direction",
			},
			[]string{"direction"},
		),
		confidence: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ensemble_decision_confidence",
				Help:    "Confidence of directional decisions",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		faults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_indicator_faults_total",
				Help: "Total number of indicator evaluations that failed",
			},
			[]string{"timeframe", "indicator"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_outcomes_total",
				Help: "Total number of recorded trade outcomes per indicator",
			},
			[]string{"indicator", "result"},
		),
		lastScore: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "ensemble_last_score",
				Help: "Ensemble score of the latest decision",
			},
		),
	}
}

func (r *Recorder) DecisionMade(d ensemble.Decision) {
	r.decisions.WithLabelValues(d.Direction.String()).Inc()
	r.lastScore.Set(d.Score)
	if len(d.Timeframes) > 0 {
		r.confidence.Observe(d.Confidence)
	}
}

func (r *Recorder) IndicatorFault(timeframe, id string) {
	r.faults.WithLabelValues(timeframe, id).Inc()
}

func (r *Recorder) OutcomeRecorded(magnitude float64, ids []string) {
	result := "loss"
	if magnitude > 0 {
		result = "win"
	}
	for _, id := range ids {
		r.outcomes.WithLabelValues(id, result).Inc()
	}
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteToFile dumps every metric in the text exposition format.
func (r *Recorder) WriteToFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
