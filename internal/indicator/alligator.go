package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// AlligatorIndicator votes when the lips, teeth and jaw lines fan out in
// order. The jaw line doubles as a stop.
type AlligatorIndicator struct{}

func (i *AlligatorIndicator) ID() string {
	return IDAlligator
}

func (i *AlligatorIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	jawPeriod, jawShift := p.Period("jaw", 13), p.Period("jaw_shift", 8)
	teethPeriod, teethShift := p.Period("teeth", 8), p.Period("teeth_shift", 5)
	lipsPeriod, lipsShift := p.Period("lips", 5), p.Period("lips_shift", 3)
	atrPeriod := p.Period("atr", 14)

	s := market.NewSeries(bars)
	need := max(
		2*jawPeriod+jawShift,
		2*teethPeriod+teethShift,
		2*lipsPeriod+lipsShift,
		atrPeriod+1,
	) + 1
	if s.Len() < need {
		return Invalid(IDAlligator, insufficient(need, s.Len()))
	}

	median := talib.MedPrice(s.High, s.Low)
	jaw := smma(median, jawPeriod)
	teeth := smma(median, teethPeriod)
	lips := smma(median, lipsPeriod)

	lines := func(at int) (float64, float64, float64) {
		return jaw[at-jawShift], teeth[at-teethShift], lips[at-lipsShift]
	}

	n := s.Len()
	j, t, l := lines(n - 1)
	pj, pt, pl := lines(n - 2)
	price := s.Close[n-1]
	a, ok := atr(s, atrPeriod)
	if !ok || !finite(j, t, l) {
		return Invalid(IDAlligator, "alligator computation produced no value")
	}

	conf := 0.5
	if a > 0 {
		conf = clamp(math.Abs(l-j)/a, 0, 1)
	}

	switch {
	case l > t && t > j && price > l:
		wasOpen := pl > pt && pt > pj
		return NewVote(IDAlligator, Buy, conf).WithATR(a).WithEntry(!wasOpen).WithStopLong(j)
	case l < t && t < j && price < l:
		wasOpen := pl < pt && pt < pj
		return NewVote(IDAlligator, Sell, conf).WithATR(a).WithEntry(!wasOpen).WithStopShort(j)
	}

	return Abstain(IDAlligator).WithATR(a)
}
