package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/shopspring/decimal"
)

type JsonReportBuilder struct {
	log    *slog.Logger
	report JsonReport
	mu     sync.Mutex
}

type JsonReport struct {
	Decisions map[string]JsonDecision `json:"decisions,omitempty"`
}

type JsonDecision struct {
	AsOf         time.Time           `json:"as_of,omitzero,omitempty"`
	Direction    string              `json:"direction"`
	Entry        string              `json:"entry"`
	Score        float64             `json:"score"`
	Confidence   float64             `json:"confidence"`
	Quality      float64             `json:"quality"`
	PositionSize float64             `json:"position_size,omitempty"`
	StopLoss     string              `json:"stop_loss,omitempty"`
	Price        string              `json:"price,omitempty"`
	ATR          string              `json:"atr,omitempty"`
	Active       []string            `json:"active,omitempty"`
	Timeframes   []JsonTimeframe     `json:"timeframes,omitempty"`
	Indicators   []JsonIndicatorVote `json:"indicators,omitempty"`
}

type JsonTimeframe struct {
	Label      string  `json:"label"`
	Weight     float64 `json:"weight"`
	Score      float64 `json:"score"`
	Conviction float64 `json:"conviction"`
}

type JsonIndicatorVote struct {
	Timeframe    string  `json:"timeframe"`
	ID           string  `json:"id"`
	Direction    string  `json:"direction"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution,omitempty"`
	Invalid      bool    `json:"invalid,omitempty"`
}

func NewJsonReportBuilder(log *slog.Logger) *JsonReportBuilder {
	return &JsonReportBuilder{
		log: log,
		report: JsonReport{
			Decisions: map[string]JsonDecision{},
		},
	}
}

func price(v float64) string {
	if v == 0 {
		return ""
	}
	return decimal.NewFromFloat(v).Round(8).String()
}

func (r *JsonReportBuilder) SubmitDecision(symbol string, asOf time.Time, d ensemble.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jd := JsonDecision{
		AsOf:       asOf,
		Direction:  d.Direction.String(),
		Entry:      d.Entry.String(),
		Score:      d.Score,
		Confidence: d.Confidence,
		Quality:    d.Quality,
		Price:      price(d.Price),
		ATR:        price(d.ATR),
		Active:     d.ActiveIndicators(),
	}
	if d.PositionSize != nil {
		jd.PositionSize = *d.PositionSize
	}
	if d.StopLoss != nil {
		jd.StopLoss = price(*d.StopLoss)
	}

	for _, tf := range d.Timeframes {
		jd.Timeframes = append(jd.Timeframes, JsonTimeframe{
			Label:      tf.Label,
			Weight:     tf.Weight,
			Score:      tf.Score,
			Conviction: tf.Conviction,
		})
	}
	for _, b := range d.Breakdown {
		jd.Indicators = append(jd.Indicators, JsonIndicatorVote{
			Timeframe:    b.Timeframe,
			ID:           b.ID,
			Direction:    b.Direction.String(),
			Weight:       b.Weight,
			Contribution: b.Contribution,
			Invalid:      !b.Valid,
		})
	}

	r.report.Decisions[symbol] = jd

	r.log.Info("decision",
		slog.String("symbol", symbol),
		slog.String("direction", jd.Direction),
		slog.String("entry", jd.Entry),
		slog.Float64("score", d.Score),
		slog.Float64("confidence", d.Confidence),
		slog.Float64("quality", d.Quality),
		slog.Float64("position_size", jd.PositionSize),
		slog.String("stop_loss", jd.StopLoss))
}

func (r *JsonReportBuilder) Write(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r.report); err != nil {
		return fmt.Errorf("failed to write decision report: %w", err)
	}

	return nil
}
