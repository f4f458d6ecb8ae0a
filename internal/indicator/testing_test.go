package indicator

import (
	"math"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/shopspring/decimal"
)

// barsFromCloses builds bars whose open is the previous close and whose
// range extends half a unit beyond the body.
func barsFromCloses(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		t := time.Unix(int64(i)*60, 0).UTC()
		bars[i] = market.Bar{
			Time:      t,
			CloseTime: t.Add(time.Minute),
			Open:      decimal.NewFromFloat(prev),
			High:      decimal.NewFromFloat(math.Max(prev, c) + 0.5),
			Low:       decimal.NewFromFloat(math.Min(prev, c) - 0.5),
			Close:     decimal.NewFromFloat(c),
			Volume:    decimal.NewFromInt(10),
		}
		prev = c
	}
	return bars
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
