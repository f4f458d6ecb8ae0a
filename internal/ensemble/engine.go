package ensemble

import (
	"log/slog"
	"math"
	"time"

	"github.com/creasty/defaults"
	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/gamma-omg/trading-ensemble/internal/market"
)

const (
	baseQuality       = 0.85
	strongQuality     = 0.95
	strongScore       = 0.4
	highAgreeScore    = 0.25
	sizingAgreeScore  = 0.2
	minStopATRClamp   = 0.5
	referenceVolRatio = 0.02
	minVolRatio       = 0.005
)

// Params describes one decision request. Nil overrides fall back to the
// engine configuration; a zero Now means the wall clock.
type Params struct {
	Timeframes         []Timeframe
	ConfirmOnClose     *bool
	BuyThreshold       *float64
	SellThreshold      *float64
	BasePositionPct    *float64
	MaxPositionPct     *float64
	MinStopATRMultiple *float64
	MaxStopATRMultiple *float64
	Now                time.Time
}

type IndicatorBreakdown struct {
	Timeframe    string              `json:"timeframe"`
	ID           string              `json:"id"`
	Direction    indicator.Direction `json:"direction"`
	Valid        bool                `json:"valid"`
	Weight       float64             `json:"weight"`
	Contribution float64             `json:"contribution"`
}

type Decision struct {
	Direction    indicator.Direction  `json:"direction"`
	Entry        indicator.EntryState `json:"entry"`
	Score        float64              `json:"score"`
	Confidence   float64              `json:"confidence"`
	Quality      float64              `json:"quality"`
	PositionSize *float64             `json:"position_size,omitempty"`
	StopLoss     *float64             `json:"stop_loss,omitempty"`
	Price        float64              `json:"price"`
	ATR          float64              `json:"atr"`
	Timeframes   []TimeframeScore     `json:"timeframes"`
	Breakdown    []IndicatorBreakdown `json:"breakdown"`
	Baseline     map[string]float64   `json:"baseline_weights"`
}

// ActiveIndicators lists the indicators that voted buy or sell in any
// timeframe, in evaluation order.
func (d Decision) ActiveIndicators() []string {
	active := map[string]bool{}
	for _, tf := range d.Timeframes {
		for _, v := range tf.Votes {
			if v.Valid && v.Direction != indicator.None {
				active[v.ID] = true
			}
		}
	}

	var res []string
	for _, tf := range d.Timeframes {
		for _, v := range tf.Votes {
			if active[v.ID] {
				res = append(res, v.ID)
				delete(active, v.ID)
			}
		}
	}
	return res
}

type Engine struct {
	log        *slog.Logger
	cfg        config.Decision
	weights    *WeightManager
	evaluators []indicator.Evaluator
	observer   Observer
}

// NewEngine builds an engine over evaluators, defaulting to the built-in
// indicator set when nil. obs may be nil.
func NewEngine(log *slog.Logger, cfg config.Engine, evaluators []indicator.Evaluator, obs Observer) *Engine {
	_ = defaults.Set(&cfg.Decision)
	if evaluators == nil {
		evaluators = indicator.Defaults()
	}
	if obs == nil {
		obs = nopObserver{}
	}

	return &Engine{
		log:        log,
		cfg:        cfg.Decision,
		weights:    NewWeightManager(cfg.Weights, cfg.Baseline),
		evaluators: evaluators,
		observer:   obs,
	}
}

func (e *Engine) Weights() *WeightManager {
	return e.weights
}

func (e *Engine) SetBaselineWeights(partial map[string]float64) {
	e.weights.SetBaselineWeights(partial)
}

func (e *Engine) BaselineWeights() map[string]float64 {
	return e.weights.BaselineWeights()
}

func (e *Engine) PerformanceSnapshot() map[string]Performance {
	return e.weights.PerformanceSnapshot()
}

// RecordOutcome feeds a realized trade result back into the weights of the
// indicators that were active in the originating decision.
func (e *Engine) RecordOutcome(magnitude float64, ids []string) {
	e.weights.RecordOutcome(magnitude, ids)
	e.observer.OutcomeRecorded(magnitude, ids)
	e.log.Debug("outcome recorded",
		slog.Float64("magnitude", magnitude),
		slog.Any("indicators", ids))
}

type settings struct {
	confirm  bool
	buy      float64
	sell     float64
	base     float64
	minSize  float64
	maxSize  float64
	minStop  float64
	maxStop  float64
	now      time.Time
	fallback float64
}

func (e *Engine) resolve(p Params) settings {
	s := settings{
		confirm:  e.cfg.ConfirmOnClose == nil || *e.cfg.ConfirmOnClose,
		buy:      e.cfg.BuyThreshold,
		sell:     e.cfg.SellThreshold,
		base:     e.cfg.BasePositionPct,
		minSize:  e.cfg.MinPositionPct,
		maxSize:  e.cfg.MaxPositionPct,
		minStop:  e.cfg.MinStopATRMultiple,
		maxStop:  e.cfg.MaxStopATRMultiple,
		now:      p.Now,
		fallback: e.cfg.DefaultVoteQuality,
	}

	if p.ConfirmOnClose != nil {
		s.confirm = *p.ConfirmOnClose
	}
	override(&s.buy, p.BuyThreshold)
	override(&s.sell, p.SellThreshold)
	override(&s.base, p.BasePositionPct)
	override(&s.maxSize, p.MaxPositionPct)
	override(&s.minStop, p.MinStopATRMultiple)
	override(&s.maxStop, p.MaxStopATRMultiple)

	if s.now.IsZero() {
		s.now = time.Now()
	}
	return s
}

func override(dst *float64, v *float64) {
	if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
		*dst = *v
	}
}

func neutral(baseline map[string]float64) Decision {
	return Decision{
		Direction:  indicator.None,
		Entry:      indicator.NoTrigger,
		Timeframes: []TimeframeScore{},
		Breakdown:  []IndicatorBreakdown{},
		Baseline:   baseline,
	}
}

// Decide combines every timeframe into one decision. It never fails: data
// problems degrade the result toward no direction.
func (e *Engine) Decide(p Params) Decision {
	baseline := e.weights.BaselineWeights()
	if len(p.Timeframes) == 0 {
		d := neutral(baseline)
		e.observer.DecisionMade(d)
		return d
	}

	s := e.resolve(p)
	d := neutral(baseline)

	var num, conv, total float64
	for _, tf := range p.Timeframes {
		ts := e.scoreTimeframe(tf, s.confirm, s.now)
		d.Timeframes = append(d.Timeframes, ts)

		num += ts.Weight * ts.Score
		conv += ts.Weight * ts.Conviction
		total += ts.Weight

		for _, v := range ts.Votes {
			iw := ts.Weights[v.ID]
			contrib := 0.0
			if v.Valid {
				contrib = v.Directional * v.Confidence * v.QualityOr(s.fallback) * iw
			}
			d.Breakdown = append(d.Breakdown, IndicatorBreakdown{
				Timeframe:    ts.Label,
				ID:           v.ID,
				Direction:    v.Direction,
				Valid:        v.Valid,
				Weight:       iw,
				Contribution: contrib,
			})
		}
	}

	if total > 0 {
		d.Score = num / total
		conv /= total
	}

	switch {
	case d.Score >= s.buy:
		d.Direction = indicator.Buy
	case d.Score <= s.sell:
		d.Direction = indicator.Sell
	}

	d.Confidence = clamp((conv+math.Abs(d.Score))/2, 0, 1)
	d.Quality = quality(d.Score, d.Timeframes)
	d.ATR = averageATR(d.Timeframes)
	d.Price = referencePrice(d.Timeframes)

	if d.Direction != indicator.None {
		d.Entry = entryState(d.Direction, d.Timeframes)
		d.StopLoss = stopLoss(d.Direction, d.Timeframes, d.Price, d.ATR, s.minStop, s.maxStop)
		d.PositionSize = indicator.Float(positionSize(d, s))
	}

	e.log.Debug("decision made",
		slog.String("direction", d.Direction.String()),
		slog.Float64("score", d.Score),
		slog.Float64("confidence", d.Confidence),
		slog.Float64("quality", d.Quality))
	e.observer.DecisionMade(d)

	return d
}

// quality starts from a base value and rises with a strong ensemble score
// and with unanimous high timeframes.
func quality(score float64, tfs []TimeframeScore) float64 {
	q := baseQuality
	if math.Abs(score) >= strongScore {
		q = strongQuality
	}

	high := 0
	agree := true
	for _, tf := range tfs {
		if tf.Weight < HighTimeframeWeight {
			continue
		}
		high++
		if !sameSign(tf.Score, score) || math.Abs(tf.Score) < highAgreeScore {
			agree = false
		}
	}

	if high > 0 && agree {
		q = 1.0
	}
	return q
}

// agreementRatio is the share of high timeframes agreeing with score with at
// least minScore magnitude, 0 when there are none.
func agreementRatio(score float64, tfs []TimeframeScore, minScore float64) float64 {
	high, agree := 0, 0
	for _, tf := range tfs {
		if tf.Weight < HighTimeframeWeight {
			continue
		}
		high++
		if sameSign(tf.Score, score) && math.Abs(tf.Score) >= minScore {
			agree++
		}
	}

	if high == 0 {
		return 0
	}
	return float64(agree) / float64(high)
}

func averageATR(tfs []TimeframeScore) float64 {
	sum, n := 0.0, 0
	for _, tf := range tfs {
		for _, v := range tf.valid() {
			if v.Aux.ATR != nil && *v.Aux.ATR > 0 {
				sum += *v.Aux.ATR
				n++
			}
		}
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// referencePrice is the latest close of the most granular timeframe.
// Unparseable labels rank after every known interval.
func referencePrice(tfs []TimeframeScore) float64 {
	best := -1
	var bestDur time.Duration
	for i, tf := range tfs {
		if len(tf.bars) == 0 {
			continue
		}

		d, ok := market.ParseInterval(tf.Label)
		if !ok {
			d = math.MaxInt64
		}
		if best < 0 || d < bestDur {
			best, bestDur = i, d
		}
	}

	if best < 0 {
		return 0
	}
	return market.NewSeries(tfs[best].bars).LastClose()
}

// entryState is triggered when any valid vote on the decided side reports a
// fresh entry trigger.
func entryState(dir indicator.Direction, tfs []TimeframeScore) indicator.EntryState {
	for _, tf := range tfs {
		for _, v := range tf.valid() {
			if v.Direction == dir && v.Entry == indicator.Triggered {
				return indicator.Triggered
			}
		}
	}
	return indicator.NoTrigger
}

func sameSign(a, b float64) bool {
	return a > 0 && b > 0 || a < 0 && b < 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
