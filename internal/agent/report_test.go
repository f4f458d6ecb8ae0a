package agent

import (
	"bytes"
	"testing"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	r := NewJsonReportBuilder(discard())
	r.SubmitDecision("BTC", time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), ensemble.Decision{
		Direction:    indicator.Buy,
		Entry:        indicator.Triggered,
		Score:        0.5,
		Confidence:   0.6,
		Quality:      0.95,
		PositionSize: indicator.Float(0.2),
		StopLoss:     indicator.Float(95.123456789),
		Price:        100,
		ATR:          2.5,
		Timeframes: []ensemble.TimeframeScore{{
			Label:      "1h",
			Weight:     1.4,
			Score:      0.5,
			Conviction: 0.7,
			Votes:      []indicator.Vote{indicator.NewVote("ema", indicator.Buy, 0.7)},
		}},
		Breakdown: []ensemble.IndicatorBreakdown{
			{Timeframe: "1h", ID: "ema", Direction: indicator.Buy, Valid: true, Weight: 0.6, Contribution: 0.4},
			{Timeframe: "1h", ID: "rsi", Direction: indicator.None, Weight: 0.4},
		},
	})
	r.SubmitDecision("ETH", time.Time{}, ensemble.Decision{Direction: indicator.None})

	var buff bytes.Buffer
	err := r.Write(&buff)
	require.NoError(t, err)

	assert.JSONEq(t, `
{
	"decisions": {
		"BTC": {
			"as_of": "2024-01-02T03:00:00Z",
			"direction": "buy",
			"entry": "triggered",
			"score": 0.5,
			"confidence": 0.6,
			"quality": 0.95,
			"position_size": 0.2,
			"stop_loss": "95.12345679",
			"price": "100",
			"atr": "2.5",
			"active": ["ema"],
			"timeframes": [{"label": "1h", "weight": 1.4, "score": 0.5, "conviction": 0.7}],
			"indicators": [
				{"timeframe": "1h", "id": "ema", "direction": "buy", "weight": 0.6, "contribution": 0.4},
				{"timeframe": "1h", "id": "rsi", "direction": "none", "weight": 0.4, "invalid": true}
			]
		},
		"ETH": {
			"direction": "none",
			"entry": "no-trigger",
			"score": 0,
			"confidence": 0,
			"quality": 0
		}
	}
}`, buff.String())
}

func TestWrite_emptyReport(t *testing.T) {
	r := NewJsonReportBuilder(discard())

	var buff bytes.Buffer
	err := r.Write(&buff)
	require.NoError(t, err)

	assert.JSONEq(t, "{}", buff.String())
}
