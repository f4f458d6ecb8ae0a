package indicator

import "math"

// Params holds indicator-specific tuning knobs, e.g. {"period": 14}.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Period returns a positive integer parameter, falling back to def for
// missing or non-positive values.
func (p Params) Period(key string, def int) int {
	v := p.Float(key, float64(def))
	if v < 1 {
		return def
	}
	return int(v)
}
