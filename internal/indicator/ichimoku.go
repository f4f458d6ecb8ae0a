package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// IchimokuIndicator requires the close outside the cloud with tenkan and
// kijun agreeing. Kijun is the structural stop.
type IchimokuIndicator struct{}

func (i *IchimokuIndicator) ID() string {
	return IDIchimoku
}

func (i *IchimokuIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	tenkanPeriod := p.Period("tenkan", 9)
	kijunPeriod := p.Period("kijun", 26)
	senkouPeriod := p.Period("senkou", 52)
	displacement := p.Period("displacement", 26)
	atrPeriod := p.Period("atr", 14)
	lookback := p.Period("cross_lookback", 3)

	s := market.NewSeries(bars)
	need := max(senkouPeriod+displacement, atrPeriod+1)
	if s.Len() < need {
		return Invalid(IDIchimoku, insufficient(need, s.Len()))
	}

	tenkan := midpoint(s, tenkanPeriod)
	kijun := midpoint(s, kijunPeriod)
	senkou := midpoint(s, senkouPeriod)

	n := s.Len()
	j := n - 1 - displacement
	spanA := (tenkan[j] + kijun[j]) / 2
	spanB := senkou[j]
	top, bottom := math.Max(spanA, spanB), math.Min(spanA, spanB)
	t, k, price := tenkan[n-1], kijun[n-1], s.Close[n-1]
	a, ok := atr(s, atrPeriod)
	if !ok || !finite(top, bottom, t, k) {
		return Invalid(IDIchimoku, "ichimoku computation produced no value")
	}

	spread := make([]float64, 0, n-kijunPeriod+1)
	for x := kijunPeriod - 1; x < n; x++ {
		spread = append(spread, tenkan[x]-kijun[x])
	}
	crossed := hasCrossOver(spread, lookback)

	conf := func(dist float64) float64 {
		if a <= 0 {
			return 0.5
		}
		return clamp(dist/a, 0, 1)
	}

	switch {
	case price > top && t > k:
		v := NewVote(IDIchimoku, Buy, conf(price-top)).WithATR(a).WithEntry(crossed)
		if k < price {
			v = v.WithStopLong(k)
		}
		return v
	case price < bottom && t < k:
		v := NewVote(IDIchimoku, Sell, conf(bottom-price)).WithATR(a).WithEntry(crossed)
		if k > price {
			v = v.WithStopShort(k)
		}
		return v
	}

	return Abstain(IDIchimoku).WithATR(a)
}

// midpoint is the (highest high + lowest low) / 2 line over period bars.
func midpoint(s market.Series, period int) []float64 {
	hi := talib.Max(s.High, period)
	lo := talib.Min(s.Low, period)
	out := make([]float64, len(hi))
	for i := range hi {
		out[i] = (hi[i] + lo[i]) / 2
	}
	return out
}
