package csvfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/market"
)

// Source loads candles from one CSV file per symbol, folding the base
// interval of the file into the requested timeframe.
type Source struct {
	log   *slog.Logger
	files map[string]string
	base  time.Duration
	end   time.Time
}

func NewSource(log *slog.Logger, cfg config.CSV) (*Source, error) {
	base, ok := market.ParseInterval(cfg.Interval)
	if !ok {
		return nil, fmt.Errorf("invalid csv base interval: %q", cfg.Interval)
	}

	return &Source{
		log:   log,
		files: cfg.Files,
		base:  base,
		end:   cfg.End,
	}, nil
}

// Load returns the latest count bars of the timeframe, oldest first.
func (s *Source) Load(ctx context.Context, symbol, timeframe string, count int) (bars []market.Bar, err error) {
	path, ok := s.files[symbol]
	if !ok {
		return nil, fmt.Errorf("no csv file configured for %s", symbol)
	}

	interval, ok := market.ParseInterval(timeframe)
	if !ok {
		return nil, fmt.Errorf("invalid timeframe: %q", timeframe)
	}
	if interval < s.base || interval%s.base != 0 {
		return nil, fmt.Errorf("timeframe %s is not a multiple of the csv interval %s", timeframe, s.base)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open csv file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("unable to close csv file: %w", cerr))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var filter barFilter
	if !s.end.IsZero() {
		filter = func(b market.Bar) bool { return b.Time.Before(s.end) }
	}

	var readErr error
	raw := make(chan market.Bar)
	go func() {
		defer close(raw)
		for b := range newBarReader(f, s.base, filter).Read(ctx) {
			if b.err != nil {
				readErr = b.err
				return
			}
			select {
			case raw <- b.bar:
			case <-ctx.Done():
				return
			}
		}
	}()

	for b := range market.NewAggregator(s.base, interval).Aggregate(raw) {
		bars = append(bars, b)
		if len(bars) > 2*count {
			bars = append(bars[:0], bars[len(bars)-count:]...)
		}
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}

	s.log.Debug("csv bars loaded",
		slog.String("symbol", symbol),
		slog.String("timeframe", timeframe),
		slog.Int("bars", len(bars)))

	return bars, nil
}
