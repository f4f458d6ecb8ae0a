package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// BollingerIndicator fades closes outside the bands. Stops sit one ATR
// beyond the violated band.
type BollingerIndicator struct{}

func (i *BollingerIndicator) ID() string {
	return IDBollinger
}

func (i *BollingerIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	period := p.Period("period", 20)
	dev := p.Float("stddev", 2)
	atrPeriod := p.Period("atr", 14)
	stopMult := p.Float("stop_atr", 1.0)

	s := market.NewSeries(bars)
	need := max(period+1, atrPeriod+1)
	if s.Len() < need {
		return Invalid(IDBollinger, insufficient(need, s.Len()))
	}

	upperBand, _, lowerBand := talib.BBands(s.Close, period, dev, dev, talib.SMA)
	n := s.Len()
	upper, lower, price := upperBand[n-1], lowerBand[n-1], s.Close[n-1]
	a, ok := atr(s, atrPeriod)
	if !ok || !finite(upper, lower) {
		return Invalid(IDBollinger, "bollinger computation produced no value")
	}

	width := upper - lower
	if width <= math.Abs(price)*1e-9 {
		return Abstain(IDBollinger).WithATR(a)
	}

	pb := (price - lower) / width
	prevWidth := upperBand[n-2] - lowerBand[n-2]
	prevInside := prevWidth > 0 && s.Close[n-2] >= lowerBand[n-2] && s.Close[n-2] <= upperBand[n-2]

	switch {
	case pb < 0:
		return NewVote(IDBollinger, Buy, clamp(0.5-pb, 0, 1)).
			WithATR(a).
			WithEntry(prevInside).
			WithStopLong(math.Min(lower, price) - stopMult*a)
	case pb > 1:
		return NewVote(IDBollinger, Sell, clamp(pb-0.5, 0, 1)).
			WithATR(a).
			WithEntry(prevInside).
			WithStopShort(math.Max(upper, price) + stopMult*a)
	}

	return Abstain(IDBollinger).WithATR(a)
}
