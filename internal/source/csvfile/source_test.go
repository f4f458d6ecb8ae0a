package csvfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gamma-omg/trading-ensemble/internal/config"
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCsv(t *testing.T, path, src string) string {
	t.Helper()

	fullPath := filepath.Join(t.TempDir(), path)
	err := os.WriteFile(fullPath, []byte(src), 0o644)
	require.NoError(t, err)
	return fullPath
}

func readBars(t *testing.T, ctx context.Context, br *barReader) []market.Bar {
	t.Helper()

	var bars []market.Bar
	for b := range br.Read(ctx) {
		require.NoError(t, b.err)
		bars = append(bars, b.bar)
	}

	return bars
}

func newTestSource(t *testing.T, cfg config.CSV) *Source {
	t.Helper()

	s, err := NewSource(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, err)
	return s
}

func TestRead(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	br := newBarReader(strings.NewReader(`timestamp,open,high,low,close,volume
1460413380.0,421.07,521.07,321.06,121.06,1.192
2016-04-11T22:24:00Z,1,2,0.5,1.5,10`), time.Minute, nil)

	bars := readBars(t, ctx, br)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Unix(1460413380, 0).UTC(), bars[0].Time)
	assert.Equal(t, time.Unix(1460413440, 0).UTC(), bars[0].CloseTime)
	assert.Equal(t, decimal.NewFromFloat(421.07), bars[0].Open)
	assert.Equal(t, decimal.NewFromFloat(521.07), bars[0].High)
	assert.Equal(t, decimal.NewFromFloat(321.06), bars[0].Low)
	assert.Equal(t, decimal.NewFromFloat(121.06), bars[0].Close)
	assert.Equal(t, decimal.NewFromFloat(1.192), bars[0].Volume)
	assert.Equal(t, time.Date(2016, 4, 11, 22, 24, 0, 0, time.UTC), bars[1].Time)
}

func TestRead_invalidRow(t *testing.T) {
	br := newBarReader(strings.NewReader(`timestamp,open,high,low,close,volume
1460413380.0,abc,521.07,321.06,121.06,1.192`), time.Minute, nil)

	var errs []error
	for b := range br.Read(context.Background()) {
		errs = append(errs, b.err)
	}
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "open")
}

func TestLoad_aggregatesAndKeepsTail(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("timestamp,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		ts := start.Add(time.Duration(i) * time.Minute).Unix()
		price := decimal.NewFromInt(int64(100 + i)).String()
		sb.WriteString(strings.Join([]string{decimal.NewFromInt(ts).String(), price, price, price, price, "1"}, ","))
		sb.WriteString("\n")
	}

	path := writeCsv(t, "btc.csv", sb.String())
	s := newTestSource(t, config.CSV{Files: map[string]string{"BTC": path}, Interval: "1m"})

	bars, err := s.Load(context.Background(), "BTC", "15m", 3)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, start.Add(15*time.Minute), bars[0].Time)
	assert.Equal(t, start.Add(60*time.Minute), bars[2].CloseTime)
	assert.True(t, decimal.NewFromInt(159).Equal(bars[2].Close))
	assert.True(t, decimal.NewFromInt(15).Equal(bars[2].Volume))

	raw, err := s.Load(context.Background(), "BTC", "1m", 1000)
	require.NoError(t, err)
	assert.Len(t, raw, 60)
}

func TestLoad_end(t *testing.T) {
	path := writeCsv(t, "btc.csv", `timestamp,open,high,low,close,volume
60,1,1,1,1,1
120,2,2,2,2,1
180,3,3,3,3,1
`)
	s := newTestSource(t, config.CSV{
		Files:    map[string]string{"BTC": path},
		Interval: "1m",
		End:      time.Unix(180, 0),
	})

	bars, err := s.Load(context.Background(), "BTC", "1m", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, decimal.NewFromInt(2).Equal(bars[1].Close))
}

func TestLoad_errors(t *testing.T) {
	path := writeCsv(t, "btc.csv", "timestamp,open,high,low,close,volume\n60,1,1,1,x,1\n")
	s := newTestSource(t, config.CSV{Files: map[string]string{"BTC": path, "ETH": "/does/not/exist.csv"}, Interval: "5m"})

	_, err := s.Load(context.Background(), "DOGE", "5m", 10)
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "BTC", "7m", 10)
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "BTC", "1m", 10)
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "ETH", "5m", 10)
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "BTC", "5m", 10)
	assert.ErrorContains(t, err, "close")
}

func TestNewSource_invalidInterval(t *testing.T) {
	_, err := NewSource(slog.Default(), config.CSV{Interval: "soon"})
	assert.Error(t, err)
}
