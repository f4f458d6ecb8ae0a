package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// EMAIndicator follows the fast/slow exponential moving average stack.
type EMAIndicator struct{}

func (i *EMAIndicator) ID() string {
	return IDEMA
}

func (i *EMAIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	fast := p.Period("fast", 9)
	slow := p.Period("slow", 21)
	atrPeriod := p.Period("atr", 14)
	lookback := p.Period("cross_lookback", 3)
	stopMult := p.Float("stop_atr", 1.5)

	if fast >= slow {
		return Invalid(IDEMA, "fast period must be shorter than slow period")
	}

	s := market.NewSeries(bars)
	need := max(slow, atrPeriod) + 1
	if s.Len() < need {
		return Invalid(IDEMA, insufficient(need, s.Len()))
	}

	fastEma := talib.Ema(s.Close, fast)
	slowEma := talib.Ema(s.Close, slow)
	a, ok := atr(s, atrPeriod)
	f, sl, price := lastOf(fastEma), lastOf(slowEma), s.LastClose()
	if !ok || !finite(f, sl, price) {
		return Invalid(IDEMA, "ema computation produced no value")
	}

	var dir Direction
	switch {
	case f > sl && price > f:
		dir = Buy
	case f < sl && price < f:
		dir = Sell
	default:
		return Abstain(IDEMA).WithATR(a)
	}

	conf := 0.5
	if a > 0 {
		conf = clamp(math.Abs(f-sl)/a, 0, 1)
	}

	spread := make([]float64, 0, s.Len()-slow+1)
	for j := slow - 1; j < s.Len(); j++ {
		spread = append(spread, fastEma[j]-slowEma[j])
	}

	v := NewVote(IDEMA, dir, conf).
		WithATR(a).
		WithEntry(hasCrossOver(spread, lookback))
	return withATRStops(v, price, a, stopMult)
}
