package indicator

import (
	"fmt"
	"math"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

func insufficient(need, got int) string {
	return fmt.Sprintf("insufficient data: requires at least %d bars, got %d", need, got)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func lastOf(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return data[len(data)-1]
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// atr returns the latest average true range; it needs period+1 bars.
func atr(s market.Series, period int) (float64, bool) {
	if s.Len() <= period {
		return 0, false
	}

	v := lastOf(talib.Atr(s.High, s.Low, s.Close, period))
	if !isFinite(v) || v < 0 {
		return 0, false
	}
	return v, true
}

// smma is the Wilder smoothed moving average, equal to an EMA of period 2n-1.
func smma(data []float64, period int) []float64 {
	return talib.Ema(data, 2*period-1)
}

// withATRStops attaches symmetric long/short stop suggestions at mult ATRs
// from the latest close.
func withATRStops(v Vote, price, atr, mult float64) Vote {
	if atr <= 0 || mult <= 0 {
		return v
	}
	return v.WithStopLong(price - mult*atr).WithStopShort(price + mult*atr)
}

func hasCrossOver(data []float64, lookback int) bool {
	l := len(data)
	if l < 2 {
		return false
	}

	n := min(lookback, l-1)
	for i := 1; i <= n; i++ {
		next := data[l-i]
		prev := data[l-i-1]
		if prev < 0 && next > 0 || prev > 0 && next < 0 {
			return true
		}
	}

	return false
}

func maxAbs(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func flat(data []float64) bool {
	for _, v := range data {
		if v != data[0] {
			return false
		}
	}
	return true
}

func tail(data []float64, n int) []float64 {
	if n >= len(data) {
		return data
	}
	return data[len(data)-n:]
}
