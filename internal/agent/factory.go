package agent

import (
	"errors"
	"log/slog"

	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/source/alpaca"
	"github.com/gamma-omg/trading-ensemble/internal/source/csvfile"
)

func CreateSource(log *slog.Logger, cfg config.SourceReference) (CandleSource, error) {
	csvCfg, ok := cfg.Source.(config.CSV)
	if ok {
		return csvfile.NewSource(log, csvCfg)
	}

	alpacaCfg, ok := cfg.Source.(config.Alpaca)
	if ok {
		return alpaca.NewSource(log, alpacaCfg), nil
	}

	return nil, errors.New("unknown candle source")
}
