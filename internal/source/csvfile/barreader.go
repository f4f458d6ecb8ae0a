package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/shopspring/decimal"
)

type barFilter func(b market.Bar) bool

type barOrErr struct {
	bar market.Bar
	err error
}

// barReader streams timestamp,open,high,low,close,volume rows. Timestamps
// are unix seconds or RFC 3339.
type barReader struct {
	rdr      *csv.Reader
	filter   barFilter
	duration time.Duration
}

func newBarReader(r io.Reader, duration time.Duration, filter barFilter) *barReader {
	if filter == nil {
		filter = func(market.Bar) bool { return true }
	}

	return &barReader{
		rdr:      csv.NewReader(bufio.NewReader(r)),
		filter:   filter,
		duration: duration,
	}
}

func (b *barReader) Read(ctx context.Context) <-chan barOrErr {
	out := make(chan barOrErr, 64)

	go func() {
		defer close(out)

		send := func(v barOrErr) bool {
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if _, err := b.rdr.Read(); err != nil {
			send(barOrErr{err: fmt.Errorf("failed to read csv header: %w", err)})
			return
		}

		for {
			data, err := b.rdr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				send(barOrErr{err: fmt.Errorf("failed to read bar data: %w", err)})
				return
			}

			bar, err := b.parse(data)
			if err != nil {
				send(barOrErr{err: err})
				return
			}

			if b.filter(bar) && !send(barOrErr{bar: bar}) {
				return
			}
		}
	}()

	return out
}

func (b *barReader) parse(data []string) (market.Bar, error) {
	if len(data) < 6 {
		return market.Bar{}, fmt.Errorf("invalid bar row: expected 6 fields, got %d", len(data))
	}

	ts, err := parseTime(data[0])
	if err != nil {
		return market.Bar{}, fmt.Errorf("failed to parse bar time: %w", err)
	}

	var vals [5]decimal.Decimal
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := range vals {
		vals[i], err = decimal.NewFromString(data[i+1])
		if err != nil {
			return market.Bar{}, fmt.Errorf("failed to read %s: %w", names[i], err)
		}
	}

	return market.Bar{
		Time:      ts,
		CloseTime: ts.Add(b.duration),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(f), 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
