package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bar struct {
	Time      time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// ClosedAt reports whether the bar is complete at t. Bars without a close
// time are treated as closed.
func (b Bar) ClosedAt(t time.Time) bool {
	if b.CloseTime.IsZero() {
		return true
	}
	return !b.CloseTime.After(t)
}
