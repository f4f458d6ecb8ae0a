package ensemble

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/gamma-omg/trading-ensemble/internal/market"
)

// Timeframe is one candle window handed to the engine. A non-positive
// Weight means the importance is derived from the label.
type Timeframe struct {
	Label      string
	Bars       []market.Bar
	Weight     float64
	Indicators map[string]indicator.Params
}

type TimeframeScore struct {
	Label      string             `json:"label"`
	Weight     float64            `json:"weight"`
	Votes      []indicator.Vote   `json:"votes"`
	Weights    map[string]float64 `json:"weights"`
	Score      float64            `json:"score"`
	Conviction float64            `json:"conviction"`

	// bars is the window the votes were computed from, after the
	// in-progress bar was dropped.
	bars []market.Bar
}

func (s TimeframeScore) valid() []indicator.Vote {
	var res []indicator.Vote
	for _, v := range s.Votes {
		if v.Valid {
			res = append(res, v)
		}
	}
	return res
}

// closedBars drops the trailing bar when it has not closed yet at now.
func closedBars(bars []market.Bar, now time.Time) []market.Bar {
	if len(bars) == 0 || bars[len(bars)-1].ClosedAt(now) {
		return bars
	}
	return bars[:len(bars)-1]
}

func (e *Engine) scoreTimeframe(tf Timeframe, confirmOnClose bool, now time.Time) TimeframeScore {
	bars := tf.Bars
	if confirmOnClose {
		bars = closedBars(bars, now)
	}

	w := tf.Weight
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		w = TimeframeWeight(tf.Label)
	}

	res := TimeframeScore{
		Label:   tf.Label,
		Weight:  w,
		Votes:   make([]indicator.Vote, 0, len(e.evaluators)),
		Weights: e.weights.EffectiveWeights(tf.Label, indicator.IDs(e.evaluators)),
		bars:    bars,
	}

	for _, ev := range e.evaluators {
		res.Votes = append(res.Votes, e.evaluate(tf.Label, ev, bars, tf.Indicators[ev.ID()]))
	}

	var num, den, weighted, total float64
	for _, v := range res.valid() {
		iw := res.Weights[v.ID]
		q := v.QualityOr(e.cfg.DefaultVoteQuality)
		num += v.Directional * v.Confidence * q * iw
		den += math.Abs(v.Directional) * v.Confidence * q * iw
		weighted += iw * math.Abs(v.Directional) * v.Confidence * q
		total += iw
	}

	if den > 0 {
		res.Score = num / den
	}
	if total > 0 {
		res.Conviction = weighted / total
	}

	return res
}

// evaluate runs one evaluator; a panic turns into an invalid vote so one
// faulty indicator never aborts the timeframe.
func (e *Engine) evaluate(label string, ev indicator.Evaluator, bars []market.Bar, p indicator.Params) (v indicator.Vote) {
	id := ev.ID()
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("indicator failed",
				slog.String("timeframe", label),
				slog.String("indicator", id),
				slog.Any("error", r))
			e.observer.IndicatorFault(label, id)
			v = indicator.Invalid(id, fmt.Sprintf("indicator fault: %v", r))
		}
	}()

	v = ev.Evaluate(bars, p).Normalize()
	v.ID = id
	return v
}
