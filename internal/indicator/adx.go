package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// ADXIndicator votes with the dominant directional index once the trend is
// strong enough. Quality reflects how far apart +DI and -DI are.
type ADXIndicator struct{}

func (i *ADXIndicator) ID() string {
	return IDADX
}

func (i *ADXIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	period := p.Period("period", 14)
	threshold := p.Float("threshold", 20)
	strong := p.Float("strong", 45)
	lookback := p.Period("cross_lookback", 3)
	stopMult := p.Float("stop_atr", 2.0)

	if strong <= threshold {
		strong = threshold + 25
	}

	s := market.NewSeries(bars)
	need := 2*period + 1
	if s.Len() < need {
		return Invalid(IDADX, insufficient(need, s.Len()))
	}

	adx := lastOf(talib.Adx(s.High, s.Low, s.Close, period))
	plus := talib.PlusDI(s.High, s.Low, s.Close, period)
	minus := talib.MinusDI(s.High, s.Low, s.Close, period)
	pdi, mdi := lastOf(plus), lastOf(minus)
	a, ok := atr(s, period)
	if !ok || !finite(adx, pdi, mdi) {
		return Invalid(IDADX, "adx computation produced no value")
	}

	if adx < threshold || pdi == mdi {
		return Abstain(IDADX).WithATR(a)
	}

	spread := make([]float64, 0, len(plus)-period)
	for j := period; j < len(plus); j++ {
		spread = append(spread, plus[j]-minus[j])
	}

	quality := 0.5
	if pdi+mdi > 0 {
		quality = clamp(0.5+math.Abs(pdi-mdi)/(pdi+mdi), 0, 1)
	}

	v := NewVote(IDADX, DirectionOf(pdi-mdi), clamp((adx-threshold)/(strong-threshold), 0, 1)).
		WithQuality(quality).
		WithATR(a).
		WithEntry(hasCrossOver(spread, lookback))
	return withATRStops(v, s.LastClose(), a, stopMult)
}
