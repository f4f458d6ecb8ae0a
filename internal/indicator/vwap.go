package indicator

import (
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// VWAPIndicator compares the close with a rolling volume-weighted average
// price. The VWAP itself is offered as the stop on the side being traded.
type VWAPIndicator struct{}

func (i *VWAPIndicator) ID() string {
	return IDVWAP
}

func (i *VWAPIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	period := p.Period("period", 20)
	band := p.Float("band", 0.001)
	scale := p.Float("scale", 0.01)
	if scale <= 0 {
		scale = 0.01
	}

	s := market.NewSeries(bars)
	if s.Len() < period {
		return Invalid(IDVWAP, insufficient(period, s.Len()))
	}

	typical := talib.TypPrice(s.High, s.Low, s.Close)
	var pv, vol float64
	for j := s.Len() - period; j < s.Len(); j++ {
		pv += typical[j] * s.Volume[j]
		vol += s.Volume[j]
	}
	if vol <= 0 {
		return Invalid(IDVWAP, "no traded volume in window")
	}

	vwap := pv / vol
	price := s.LastClose()
	if !finite(vwap) || vwap <= 0 {
		return Invalid(IDVWAP, "vwap computation produced no value")
	}

	dev := (price - vwap) / vwap
	conf := clamp(math.Abs(dev)/scale, 0, 1)
	switch {
	case dev > band:
		return NewVote(IDVWAP, Buy, conf).WithStopLong(vwap)
	case dev < -band:
		return NewVote(IDVWAP, Sell, conf).WithStopShort(vwap)
	}

	return Abstain(IDVWAP)
}
