package indicator

import (
	"github.com/gamma-omg/trading-ensemble/internal/market"
	"github.com/markcheno/go-talib"
)

// RSIIndicator is a mean-reversion vote: oversold buys, overbought sells.
type RSIIndicator struct{}

func (i *RSIIndicator) ID() string {
	return IDRSI
}

func (i *RSIIndicator) Evaluate(bars []market.Bar, p Params) Vote {
	period := p.Period("period", 14)
	overbought := p.Float("overbought", 70)
	oversold := p.Float("oversold", 30)
	span := p.Float("span", 20)
	lookback := p.Period("cross_lookback", 3)

	if oversold >= overbought {
		return Invalid(IDRSI, "oversold level must be below overbought level")
	}
	if span <= 0 {
		span = 20
	}

	s := market.NewSeries(bars)
	need := period + 2
	if s.Len() < need {
		return Invalid(IDRSI, insufficient(need, s.Len()))
	}

	if flat(tail(s.Close, period+1)) {
		return Abstain(IDRSI)
	}

	rsi := talib.Rsi(s.Close, period)[period:]
	r := lastOf(rsi)
	if !finite(r) {
		return Invalid(IDRSI, "rsi computation produced no value")
	}

	prev := rsi[:len(rsi)-1]
	switch {
	case r <= oversold:
		crossed := false
		for _, v := range tail(prev, lookback) {
			crossed = crossed || v > oversold
		}
		return NewVote(IDRSI, Buy, clamp(0.5+(oversold-r)/span, 0, 1)).WithEntry(crossed)
	case r >= overbought:
		crossed := false
		for _, v := range tail(prev, lookback) {
			crossed = crossed || v < overbought
		}
		return NewVote(IDRSI, Sell, clamp(0.5+(r-overbought)/span, 0, 1)).WithEntry(crossed)
	}

	return Abstain(IDRSI)
}
