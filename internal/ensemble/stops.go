package ensemble

import (
	"math"
	"sort"

	"github.com/gamma-omg/trading-ensemble/internal/indicator"
)

// stopCandidates collects the stop suggestions for dir from valid votes.
// Suggestions on the wrong side of price are discarded.
func stopCandidates(dir indicator.Direction, tfs []TimeframeScore, price float64) []float64 {
	var res []float64
	for _, tf := range tfs {
		for _, v := range tf.valid() {
			var stop *float64
			if dir == indicator.Buy {
				stop = v.Aux.StopLong
			} else {
				stop = v.Aux.StopShort
			}
			if stop == nil {
				continue
			}

			if price > 0 && (dir == indicator.Buy && *stop >= price || dir == indicator.Sell && *stop <= price) {
				continue
			}
			res = append(res, *stop)
		}
	}
	return res
}

func median(vals []float64) float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)

	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// stopLoss takes the median candidate and pushes it out to at least the ATR
// floor distance from price.
func stopLoss(dir indicator.Direction, tfs []TimeframeScore, price, atr, minMult, maxMult float64) *float64 {
	var stop *float64
	if c := stopCandidates(dir, tfs, price); len(c) > 0 {
		stop = indicator.Float(median(c))
	}

	if price <= 0 || atr <= 0 {
		return stop
	}

	if maxMult < minStopATRClamp {
		maxMult = minStopATRClamp
	}
	floor := clamp(minMult, minStopATRClamp, maxMult) * atr
	if stop != nil && math.Abs(price-*stop) >= floor {
		return stop
	}

	return indicator.Float(price - dir.Sign()*floor)
}

func positionSize(d Decision, s settings) float64 {
	volFactor := 1.0
	if d.Price > 0 {
		volFactor = clamp(referenceVolRatio/math.Max(minVolRatio, d.ATR/d.Price), 0.5, 1.5)
	}

	ratio := agreementRatio(d.Score, d.Timeframes, sizingAgreeScore)
	size := s.base * d.Confidence * (0.5 + 0.5*ratio) * volFactor
	return clamp(size, s.minSize, s.maxSize)
}
