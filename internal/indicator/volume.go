package indicator

import (
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// VolumeIndicator votes with the candle body on volume spikes.
type VolumeIndicator struct{}

func (i *VolumeIndicator) ID() string {
	return IDVolume
}

func (i *VolumeIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	period := p.Period("period", 20)
	spike := p.Float("spike", 1.5)
	quality := p.Float("quality", 0.7)
	if spike <= 1 {
		spike = 1.5
	}

	s := market.NewSeries(bars)
	need := period + 1
	if s.Len() < need {
		return Invalid(IDVolume, insufficient(need, s.Len()))
	}

	n := s.Len()
	avg := talib.Sma(s.Volume, period)[n-2]
	if !finite(avg) || avg <= 0 {
		return Invalid(IDVolume, "no traded volume in window")
	}

	ratio := s.Volume[n-1] / avg
	if ratio < spike {
		return Abstain(IDVolume)
	}

	body := s.Close[n-1] - s.Open[n-1]
	if body == 0 {
		return Abstain(IDVolume)
	}

	return NewVote(IDVolume, DirectionOf(body), clamp((ratio-1)/(2*(spike-1)), 0, 1)).
		WithQuality(quality).
		WithEntry(true)
}
