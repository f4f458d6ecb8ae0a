package ensemble

import (
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/market"
)

// HighTimeframeWeight is the importance from which a timeframe counts as a
// high timeframe (1h and above with the derived table).
const HighTimeframeWeight = 1.4

var timeframeWeights = map[time.Duration]float64{
	24 * time.Hour:   2.0,
	4 * time.Hour:    1.6,
	time.Hour:        1.4,
	30 * time.Minute: 1.2,
	15 * time.Minute: 1.1,
}

// TimeframeWeight derives the importance of a timeframe from its label.
// Spellings of the same interval ("1d", "D", "daily", "1440") share a weight.
func TimeframeWeight(label string) float64 {
	d, ok := market.ParseInterval(label)
	if !ok {
		return 1.0
	}

	if w, ok := timeframeWeights[d]; ok {
		return w
	}
	return 1.0
}

// IsIntraday reports whether label names a minute or hourly interval below
// four hours. Unknown labels are treated as higher timeframes.
func IsIntraday(label string) bool {
	d, ok := market.ParseInterval(label)
	return ok && d < 4*time.Hour
}
