package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type Aggregator interface {
	Aggregate(bars <-chan Bar) <-chan Bar
}

type IdentityAggregator struct {
}

func (a *IdentityAggregator) Aggregate(bars <-chan Bar) <-chan Bar {
	return bars
}

// IntervalAggregator folds bars of BarDuration into bars of Interval. The
// trailing bucket is emitted when the input closes even if incomplete; its
// CloseTime is the bucket end, so confirm-on-close logic can drop it.
type IntervalAggregator struct {
	BarDuration time.Duration
	Interval    time.Duration
}

func (a *IntervalAggregator) Aggregate(bars <-chan Bar) <-chan Bar {
	res := make(chan Bar)
	go func() {
		defer close(res)

		var cur *Bar
		for b := range bars {
			if cur != nil && !b.Time.Before(cur.CloseTime) {
				res <- *cur
				cur = nil
			}

			if cur == nil {
				start := b.Time.Truncate(a.Interval)
				cur = &Bar{
					Time:      start,
					CloseTime: start.Add(a.Interval),
					Open:      b.Open,
					High:      b.High,
					Low:       b.Low,
					Volume:    decimal.Zero,
				}
			}

			cur.Close = b.Close
			cur.High = decimal.Max(cur.High, b.High)
			cur.Low = decimal.Min(cur.Low, b.Low)
			cur.Volume = cur.Volume.Add(b.Volume)

			if !b.Time.Add(a.BarDuration).Before(cur.CloseTime) {
				res <- *cur
				cur = nil
			}
		}

		if cur != nil {
			res <- *cur
		}
	}()

	return res
}

// NewAggregator picks the aggregator that turns bars of base duration into
// bars of the target duration.
func NewAggregator(base, target time.Duration) Aggregator {
	if target <= base {
		return &IdentityAggregator{}
	}
	return &IntervalAggregator{BarDuration: base, Interval: target}
}
