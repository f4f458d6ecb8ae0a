package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/shopspring/decimal"
)

// Source loads historical crypto bars from the Alpaca market data API.
type Source struct {
	log *slog.Logger
	api marketApi
	end time.Time
	now func() time.Time
}

func NewSource(log *slog.Logger, cfg config.Alpaca) *Source {
	return newSource(log, newAlpacaApi(cfg.ApiKey, cfg.Secret, cfg.BaseUrl), cfg.End)
}

func newSource(log *slog.Logger, api marketApi, end time.Time) *Source {
	return &Source{
		log: log,
		api: api,
		end: end,
		now: time.Now,
	}
}

// timeFrame maps an interval onto the coarsest Alpaca unit dividing it.
func timeFrame(d time.Duration) (marketdata.TimeFrame, error) {
	switch {
	case d <= 0 || d%time.Minute != 0:
		return marketdata.TimeFrame{}, fmt.Errorf("unsupported alpaca interval: %s", d)
	case d%(24*time.Hour) == 0:
		return marketdata.NewTimeFrame(int(d/(24*time.Hour)), marketdata.Day), nil
	case d%time.Hour == 0:
		return marketdata.NewTimeFrame(int(d/time.Hour), marketdata.Hour), nil
	default:
		return marketdata.NewTimeFrame(int(d/time.Minute), marketdata.Min), nil
	}
}

// Load returns up to count of the latest bars of the timeframe, oldest
// first.
func (s *Source) Load(ctx context.Context, symbol, timeframe string, count int) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interval, ok := market.ParseInterval(timeframe)
	if !ok {
		return nil, fmt.Errorf("invalid timeframe: %q", timeframe)
	}

	tf, err := timeFrame(interval)
	if err != nil {
		return nil, err
	}

	end := s.end
	if end.IsZero() {
		end = s.now()
	}

	history, err := s.api.GetCryptoBars(symbol, marketdata.GetCryptoBarsRequest{
		TimeFrame: tf,
		Start:     end.Add(-interval * time.Duration(count+1)),
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s bars for %s: %w", timeframe, symbol, err)
	}

	if len(history) > count {
		history = history[len(history)-count:]
	}

	bars := make([]market.Bar, len(history))
	for i, b := range history {
		bars[i] = market.Bar{
			Time:      b.Timestamp,
			CloseTime: b.Timestamp.Add(interval),
			Open:      decimal.NewFromFloat(b.Open),
			High:      decimal.NewFromFloat(b.High),
			Low:       decimal.NewFromFloat(b.Low),
			Close:     decimal.NewFromFloat(b.Close),
			Volume:    decimal.NewFromFloat(b.Volume),
		}
	}

	s.log.Debug("alpaca bars loaded",
		slog.String("symbol", symbol),
		slog.String("timeframe", timeframe),
		slog.Int("bars", len(bars)))

	return bars, nil
}
