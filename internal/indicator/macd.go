package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// MACDIndicator votes with the sign of the MACD histogram. Confidence is the
// latest histogram magnitude relative to its recent extreme.
type MACDIndicator struct{}

func (i *MACDIndicator) ID() string {
	return IDMACD
}

func (i *MACDIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	fast := p.Period("fast", 12)
	slow := p.Period("slow", 26)
	signal := p.Period("signal", 9)
	norm := p.Period("norm_lookback", 50)
	lookback := p.Period("cross_lookback", 3)
	atrPeriod := p.Period("atr", 14)
	stopMult := p.Float("stop_atr", 2.0)

	if fast >= slow {
		return Invalid(IDMACD, "fast period must be shorter than slow period")
	}

	s := market.NewSeries(bars)
	need := max(slow+signal, atrPeriod+1)
	if s.Len() < need {
		return Invalid(IDMACD, insufficient(need, s.Len()))
	}

	_, _, hist := talib.Macd(s.Close, fast, slow, signal)
	hist = hist[slow+signal-2:]
	h := lastOf(hist)
	a, ok := atr(s, atrPeriod)
	if !ok || !finite(h) {
		return Invalid(IDMACD, "macd computation produced no value")
	}

	if h == 0 {
		return Abstain(IDMACD).WithATR(a)
	}

	conf := 0.0
	if m := maxAbs(tail(hist, norm)); m > 0 {
		conf = math.Abs(h) / m
	}

	v := NewVote(IDMACD, DirectionOf(h), conf).
		WithATR(a).
		WithEntry(hasCrossOver(hist, lookback))
	return withATRStops(v, s.LastClose(), a, stopMult)
}
