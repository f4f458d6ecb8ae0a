package agent

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gamma-omg/trading-ensemble/internal/market"
)

// csvBarsDump writes bars in the layout the csv candle source reads back.
type csvBarsDump struct {
	w *csv.Writer
}

func newCsvBarsDump(w io.Writer) *csvBarsDump {
	return &csvBarsDump{csv.NewWriter(w)}
}

func (d *csvBarsDump) Dump(bars []market.Bar) error {
	if err := d.w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return fmt.Errorf("failed to write bars dump csv header: %w", err)
	}

	for _, bar := range bars {
		err := d.w.Write([]string{
			strconv.FormatInt(bar.Time.Unix(), 10),
			bar.Open.String(),
			bar.High.String(),
			bar.Low.String(),
			bar.Close.String(),
			bar.Volume.String()})

		if err != nil {
			return fmt.Errorf("failed to dump bar: %w", err)
		}
	}

	d.w.Flush()
	return d.w.Error()
}
