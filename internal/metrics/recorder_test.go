package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_DecisionMade(t *testing.T) {
	r := New()

	r.DecisionMade(ensemble.Decision{Direction: indicator.Buy, Score: 0.4, Confidence: 0.7, Timeframes: []ensemble.TimeframeScore{{}}})
	r.DecisionMade(ensemble.Decision{Direction: indicator.Buy, Score: 0.3, Confidence: 0.6, Timeframes: []ensemble.TimeframeScore{{}}})
	r.DecisionMade(ensemble.Decision{Direction: indicator.None})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.decisions.WithLabelValues("buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.decisions.WithLabelValues("none")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastScore))
	assert.Equal(t, 1, testutil.CollectAndCount(r.confidence))
}

func TestRecorder_FaultsAndOutcomes(t *testing.T) {
	r := New()

	r.IndicatorFault("1h", "rsi")
	r.IndicatorFault("1h", "rsi")
	r.OutcomeRecorded(1.2, []string{"rsi", "ema"})
	r.OutcomeRecorded(-0.5, []string{"rsi"})
	r.OutcomeRecorded(0, []string{"ema"})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.faults.WithLabelValues("1h", "rsi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("rsi", "win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("rsi", "loss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("ema", "win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("ema", "loss")))
}

func TestRecorder_WriteToFile(t *testing.T) {
	r := New()
	r.IndicatorFault("5m", "macd")

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteToFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `ensemble_indicator_faults_total{indicator="macd",timeframe="5m"} 1`)
}
