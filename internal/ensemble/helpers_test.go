package ensemble

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stub votes according to its params: dir (+1/-1/0), conf, quality, atr,
// stop_long, stop_short, invalid and entry.
func stub(id string) indicator.Evaluator {
	return indicator.Func(id, func(bars []market.Bar, p indicator.Params) indicator.Vote {
		if p.Float("invalid", 0) != 0 {
			return indicator.Invalid(id, "stub invalid")
		}

		v := indicator.NewVote(id, indicator.DirectionOf(p.Float("dir", 0)), p.Float("conf", 0))
		if q, ok := p["quality"]; ok {
			v = v.WithQuality(q)
		}
		if a, ok := p["atr"]; ok {
			v = v.WithATR(a)
		}
		if s, ok := p["stop_long"]; ok {
			v = v.WithStopLong(s)
		}
		if s, ok := p["stop_short"]; ok {
			v = v.WithStopShort(s)
		}
		return v.WithEntry(p.Float("entry", 0) != 0)
	})
}

func panicking(id string) indicator.Evaluator {
	return indicator.Func(id, func(bars []market.Bar, p indicator.Params) indicator.Vote {
		_ = bars[len(bars)+1]
		return indicator.Abstain(id)
	})
}

func newTestEngine(obs Observer, ids ...string) *Engine {
	baseline := map[string]float64{}
	var evaluators []indicator.Evaluator
	for _, id := range ids {
		baseline[id] = 1
		evaluators = append(evaluators, stub(id))
	}

	return NewEngine(discardLogger(), config.Engine{Baseline: baseline}, evaluators, obs)
}

// testBars returns n one-minute bars closing before testNow, the last one
// at price close.
func testBars(n int, close float64) []market.Bar {
	bars := make([]market.Bar, n)
	start := testNow.Add(-time.Duration(n) * time.Minute)
	for i := range bars {
		t := start.Add(time.Duration(i) * time.Minute)
		bars[i] = market.Bar{
			Time:      t,
			CloseTime: t.Add(time.Minute),
			Open:      decimal.NewFromFloat(close),
			High:      decimal.NewFromFloat(close),
			Low:       decimal.NewFromFloat(close),
			Close:     decimal.NewFromFloat(close),
			Volume:    decimal.NewFromInt(1),
		}
	}
	return bars
}

// scored builds a timeframe whose bull/bear stubs produce the given
// aggregated score with equal weights.
func scored(label string, score float64) Timeframe {
	return Timeframe{
		Label: label,
		Bars:  testBars(3, 100),
		Indicators: map[string]indicator.Params{
			"bull": {"dir": 1, "conf": (1 + score) / 2},
			"bear": {"dir": -1, "conf": (1 - score) / 2},
		},
	}
}

type mockObserver struct {
	mu        sync.Mutex
	faults    []string
	decisions []Decision
	outcomes  int
}

func (o *mockObserver) IndicatorFault(timeframe, id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.faults = append(o.faults, timeframe+"/"+id)
}

func (o *mockObserver) DecisionMade(d Decision) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, d)
}

func (o *mockObserver) OutcomeRecorded(float64, []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes++
}
