package indicator

import "github.com/gamma-omg/trading-ensemble/internal/market"

const (
	IDEMA       = "ema"
	IDMACD      = "macd"
	IDRSI       = "rsi"
	IDADX       = "adx"
	IDBollinger = "bollinger"
	IDVWAP      = "vwap"
	IDVolume    = "volume"
	IDIchimoku  = "ichimoku"
	IDAlligator = "alligator"
)

// Evaluator turns a candle window into a vote. Implementations must not
// panic on short windows: they return Invalid instead.
type Evaluator interface {
	ID() string
	Evaluate(bars []market.Bar, p Params) Vote
}

type funcEvaluator struct {
	id string
	fn func(bars []market.Bar, p Params) Vote
}

func (f *funcEvaluator) ID() string {
	return f.id
}

func (f *funcEvaluator) Evaluate(bars []market.Bar, p Params) Vote {
	return f.fn(bars, p)
}

// Func adapts a plain function to the Evaluator interface.
func Func(id string, fn func(bars []market.Bar, p Params) Vote) Evaluator {
	return &funcEvaluator{id: id, fn: fn}
}

// Defaults returns the built-in evaluators in their fixed iteration order.
func Defaults() []Evaluator {
	return []Evaluator{
		&EMAIndicator{},
		&MACDIndicator{},
		&RSIIndicator{},
		&ADXIndicator{},
		&BollingerIndicator{},
		&VWAPIndicator{},
		&VolumeIndicator{},
		&IchimokuIndicator{},
		&AlligatorIndicator{},
	}
}

func IDs(evaluators []Evaluator) []string {
	ids := make([]string, len(evaluators))
	for i, e := range evaluators {
		ids[i] = e.ID()
	}
	return ids
}
