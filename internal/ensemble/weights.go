package ensemble

import (
	"math"
	"sync"

	"github.com/creasty/defaults"
	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
)

// DefaultBaseline favors trend and momentum families over secondary flow
// indicators.
func DefaultBaseline() map[string]float64 {
	return map[string]float64{
		indicator.IDEMA:       0.16,
		indicator.IDMACD:      0.16,
		indicator.IDRSI:       0.12,
		indicator.IDADX:       0.12,
		indicator.IDBollinger: 0.10,
		indicator.IDVWAP:      0.10,
		indicator.IDVolume:    0.06,
		indicator.IDIchimoku:  0.10,
		indicator.IDAlligator: 0.08,
	}
}

// intradayTilt is added to baseline weights on intraday timeframes and
// subtracted on higher ones.
var intradayTilt = map[string]float64{
	indicator.IDVWAP:      0.03,
	indicator.IDVolume:    0.02,
	indicator.IDIchimoku:  -0.03,
	indicator.IDAlligator: -0.02,
}

type Performance struct {
	WinRate float64 `json:"win_rate"`
	Edge    float64 `json:"edge"`
	Samples int     `json:"samples"`
}

// WeightManager owns baseline weights and per-indicator performance records.
// It is safe for concurrent use.
type WeightManager struct {
	cfg      config.Weights
	mu       sync.RWMutex
	baseline map[string]float64
	perf     map[string]*Performance
}

// NewWeightManager creates a manager with the given baseline, or the default
// baseline when nil. Zero tunables are replaced by their defaults.
func NewWeightManager(cfg config.Weights, baseline map[string]float64) *WeightManager {
	_ = defaults.Set(&cfg)
	if baseline == nil {
		baseline = DefaultBaseline()
	}

	m := &WeightManager{
		cfg:      cfg,
		baseline: map[string]float64{},
		perf:     map[string]*Performance{},
	}
	for id, w := range baseline {
		m.baseline[id] = sanitize(w)
	}
	normalize(m.baseline)

	return m
}

// SetBaselineWeights merges partial into the current baseline and
// renormalizes it.
func (m *WeightManager) SetBaselineWeights(partial map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, w := range partial {
		m.baseline[id] = sanitize(w)
	}
	normalize(m.baseline)
}

func (m *WeightManager) BaselineWeights() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]float64, len(m.baseline))
	for id, w := range m.baseline {
		res[id] = w
	}
	return res
}

// EffectiveWeights returns the weights of ids for the given timeframe:
// baseline, timeframe tilt, performance multiplier and the minimum weight
// floor. The result always sums to 1.
func (m *WeightManager) EffectiveWeights(label string, ids []string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sign := -1.0
	if IsIntraday(label) {
		sign = 1.0
	}

	w := make(map[string]float64, len(ids))
	for _, id := range ids {
		w[id] = m.baseline[id]
	}
	normalize(w)

	for id, delta := range intradayTilt {
		if v, ok := w[id]; ok {
			w[id] = math.Max(0, v+sign*delta)
		}
	}
	normalize(w)

	for id := range w {
		w[id] *= m.multiplier(id)
	}
	normalize(w)

	applyFloor(w, m.cfg.MinWeight)
	return w
}

// Multiplier is the performance multiplier of an indicator, 1 when it has
// no recorded outcomes.
func (m *WeightManager) Multiplier(id string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.multiplier(id)
}

func (m *WeightManager) multiplier(id string) float64 {
	p, ok := m.perf[id]
	if !ok || p.Samples == 0 {
		return 1
	}

	winAdj := (p.WinRate - 0.5) * 2
	edgeAdj := math.Max(-m.cfg.EdgeCap, math.Min(m.cfg.EdgeCap, p.Edge)) / m.cfg.EdgeCap
	mix := m.cfg.WinWeight*winAdj + m.cfg.EdgeWeight*edgeAdj

	var mult float64
	if mix >= 0 {
		mult = 1 + mix*(m.cfg.MaxBoost-1)
	} else {
		mult = 1 + mix*(1-m.cfg.MaxCut)
	}

	return math.Max(m.cfg.MaxCut, math.Min(m.cfg.MaxBoost, mult))
}

// RecordOutcome folds a realized outcome into the EWMA records of the
// indicators that were active in the decision. Non-finite magnitudes are
// ignored.
func (m *WeightManager) RecordOutcome(magnitude float64, ids []string) {
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return
	}

	win := 0.0
	if magnitude > 0 {
		win = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.cfg.Alpha
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, ok := m.perf[id]
		if !ok {
			p = &Performance{WinRate: 0.5}
			m.perf[id] = p
		}

		p.WinRate = (1-a)*p.WinRate + a*win
		p.Edge = (1-a)*p.Edge + a*magnitude
		p.Samples++
	}
}

func (m *WeightManager) PerformanceSnapshot() map[string]Performance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]Performance, len(m.perf))
	for id, p := range m.perf {
		res[id] = *p
	}
	return res
}

func sanitize(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// normalize scales w to sum 1, falling back to a uniform distribution when
// nothing carries weight.
func normalize(w map[string]float64) {
	if len(w) == 0 {
		return
	}

	sum := 0.0
	for id, v := range w {
		v = sanitize(v)
		w[id] = v
		sum += v
	}

	if sum <= 0 {
		u := 1 / float64(len(w))
		for id := range w {
			w[id] = u
		}
		return
	}

	for id, v := range w {
		w[id] = v / sum
	}
}

// applyFloor raises every weight to at least floor and scales the rest down
// so the sum stays 1. w must already be normalized.
func applyFloor(w map[string]float64, floor float64) {
	n := float64(len(w))
	if n == 0 || floor <= 0 {
		return
	}

	if floor*n >= 1 {
		for id := range w {
			w[id] = 1 / n
		}
		return
	}

	pinned := map[string]bool{}
	for {
		free := 0.0
		for id, v := range w {
			if !pinned[id] {
				free += v
			}
		}

		scale := (1 - floor*float64(len(pinned))) / free
		changed := false
		for id, v := range w {
			if pinned[id] {
				continue
			}
			if v*scale < floor {
				pinned[id] = true
				w[id] = floor
				changed = true
			}
		}

		if !changed {
			for id, v := range w {
				if !pinned[id] {
					w[id] = v * scale
				}
			}
			return
		}
	}
}
