package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamma-omg/trading-ensemble/internal/agent"
	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/ensemble"
	"github.com/gamma-omg/trading-ensemble/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.ReadFromFile(os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)

	recorder := metrics.New()
	engine := ensemble.NewEngine(logger, cfg.Engine, nil, recorder)

	src, err := agent.CreateSource(logger, cfg.SourceRef)
	if err != nil {
		return fmt.Errorf("failed to create candle source: %w", err)
	}

	report := agent.NewJsonReportBuilder(logger)
	runner := agent.NewRunner(logger, *cfg, src, engine, report)

	_, runErr := runner.Run(ctx)
	if runErr != nil {
		logger.Error("run finished with errors", slog.Any("error", runErr))
	}

	errs := []error{runErr}
	if cfg.Report != "" {
		errs = append(errs, writeFile(cfg.Report, report.Write))
	} else {
		errs = append(errs, report.Write(os.Stdout))
	}

	if cfg.Metrics != "" {
		errs = append(errs, recorder.WriteToFile(cfg.Metrics))
	}

	return errors.Join(errs...)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close %s: %w", path, cerr))
		}
	}()

	return write(f)
}
