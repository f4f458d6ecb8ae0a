package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/gamma-omg/trading-ensemble/internal/indicator"
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"golang.org/x/sync/errgroup"
)

const maxParallelLoads = 8

type CandleSource interface {
	Load(ctx context.Context, symbol, timeframe string, count int) ([]market.Bar, error)
}

type decisionEngine interface {
	Decide(p ensemble.Params) ensemble.Decision
}

// Runner loads candles for every configured symbol and timeframe, then runs
// one decision per symbol.
type Runner struct {
	log    *slog.Logger
	cfg    config.Config
	source CandleSource
	engine decisionEngine
	report *JsonReportBuilder
	now    func() time.Time
}

func NewRunner(log *slog.Logger, cfg config.Config, source CandleSource, engine decisionEngine, report *JsonReportBuilder) *Runner {
	return &Runner{
		log:    log,
		cfg:    cfg,
		source: source,
		engine: engine,
		report: report,
		now:    time.Now,
	}
}

type loadKey struct {
	symbol string
	index  int
}

func (r *Runner) load(ctx context.Context) (map[loadKey][]market.Bar, error) {
	var mu sync.Mutex
	res := map[loadKey][]market.Bar{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for symbol, s := range r.cfg.Symbols {
		for i, tf := range s.Timeframes {
			g.Go(func() error {
				bars, err := r.source.Load(ctx, symbol, tf.Label, tf.Bars)
				if err != nil {
					return fmt.Errorf("failed to load %s %s candles: %w", symbol, tf.Label, err)
				}

				mu.Lock()
				res[loadKey{symbol, i}] = bars
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// asOf is the close of the latest bar of the most granular timeframe,
// capped by the wall clock so live sources keep their in-progress bar out.
func (r *Runner) asOf(tfs []ensemble.Timeframe) time.Time {
	now := r.now()

	var best time.Duration
	var at time.Time
	for _, tf := range tfs {
		d, ok := market.ParseInterval(tf.Label)
		if !ok || len(tf.Bars) == 0 {
			continue
		}
		if at.IsZero() || d < best {
			best, at = d, tf.Bars[len(tf.Bars)-1].CloseTime
		}
	}

	if at.IsZero() || at.After(now) {
		return now
	}
	return at
}

func (r *Runner) Run(ctx context.Context) (map[string]ensemble.Decision, error) {
	loaded, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(r.cfg.Symbols))
	for s := range r.cfg.Symbols {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)

	var errs []error
	decisions := make(map[string]ensemble.Decision, len(symbols))
	for _, symbol := range symbols {
		var tfs []ensemble.Timeframe
		for i, tf := range r.cfg.Symbols[symbol].Timeframes {
			params := make(map[string]indicator.Params, len(tf.Indicators))
			for id, p := range tf.Indicators {
				params[id] = p
			}
			tfs = append(tfs, ensemble.Timeframe{
				Label:      tf.Label,
				Bars:       loaded[loadKey{symbol, i}],
				Weight:     tf.Weight,
				Indicators: params,
			})
		}

		at := r.asOf(tfs)
		d := r.engine.Decide(ensemble.Params{Timeframes: tfs, Now: at})
		decisions[symbol] = d
		r.report.SubmitDecision(symbol, at, d)

		if r.cfg.DebugPlot != "" {
			if err := r.plot(symbol, d); err != nil {
				errs = append(errs, err)
			}
		}
		if r.cfg.DataDump != "" {
			if err := r.dump(symbol, tfs); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return decisions, errors.Join(errs...)
}

func fileName(symbol, suffix string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(symbol) + suffix
}

func (r *Runner) plot(symbol string, d ensemble.Decision) error {
	p, err := ensemble.PlotDecision(symbol, d, 800, 240)
	if err != nil {
		return fmt.Errorf("failed to plot %s decision: %w", symbol, err)
	}
	if p.Len() == 0 {
		return nil
	}

	if err := os.MkdirAll(r.cfg.DebugPlot, 0o755); err != nil {
		return fmt.Errorf("failed to create debug plot dir: %w", err)
	}
	return p.Save(filepath.Join(r.cfg.DebugPlot, fileName(symbol, ".png")))
}

func (r *Runner) dump(symbol string, tfs []ensemble.Timeframe) error {
	if err := os.MkdirAll(r.cfg.DataDump, 0o755); err != nil {
		return fmt.Errorf("failed to create data dump dir: %w", err)
	}

	var errs []error
	for _, tf := range tfs {
		path := filepath.Join(r.cfg.DataDump, fileName(symbol, "_"+tf.Label+".csv"))
		f, err := os.Create(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create data dump: %w", err))
			continue
		}

		errs = append(errs, newCsvBarsDump(f).Dump(tf.Bars))
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close data dump: %w", err))
		}
	}

	return errors.Join(errs...)
}
