package indicator

import (
	"fmt"
	"math"
)

type Direction int

const (
	Buy  Direction = 1
	None Direction = 0
	Sell Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case None:
		return "none"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("direction_%d", int(d))
	}
}

func (d Direction) Sign() float64 {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DirectionOf maps the sign of a score to a direction.
func DirectionOf(score float64) Direction {
	switch {
	case score > 0:
		return Buy
	case score < 0:
		return Sell
	default:
		return None
	}
}

type EntryState int

const (
	NoTrigger EntryState = iota
	Triggered
)

func (e EntryState) String() string {
	if e == Triggered {
		return "triggered"
	}
	return "no-trigger"
}

func (e EntryState) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Aux carries optional per-indicator data. A nil field means the indicator
// has no suggestion, never a zero price.
type Aux struct {
	ATR       *float64 `json:"atr,omitempty"`
	StopLong  *float64 `json:"stop_long,omitempty"`
	StopShort *float64 `json:"stop_short,omitempty"`
}

type Vote struct {
	ID          string     `json:"id"`
	Direction   Direction  `json:"direction"`
	Entry       EntryState `json:"entry"`
	Directional float64    `json:"directional"`
	Confidence  float64    `json:"confidence"`
	Quality     *float64   `json:"quality,omitempty"`
	Valid       bool       `json:"valid"`
	Reason      string     `json:"reason,omitempty"`
	Aux         Aux        `json:"aux"`
}

func Float(v float64) *float64 {
	return &v
}

func NewVote(id string, dir Direction, confidence float64) Vote {
	return Vote{
		ID:          id,
		Direction:   dir,
		Directional: dir.Sign(),
		Confidence:  confidence,
		Valid:       true,
	}
}

func Abstain(id string) Vote {
	return NewVote(id, None, 0)
}

func Invalid(id, reason string) Vote {
	return Vote{ID: id, Direction: None, Reason: reason}
}

func (v Vote) WithQuality(q float64) Vote {
	v.Quality = Float(q)
	return v
}

func (v Vote) WithEntry(triggered bool) Vote {
	if triggered {
		v.Entry = Triggered
	} else {
		v.Entry = NoTrigger
	}
	return v
}

func (v Vote) WithATR(atr float64) Vote {
	v.Aux.ATR = Float(atr)
	return v
}

func (v Vote) WithStopLong(price float64) Vote {
	v.Aux.StopLong = Float(price)
	return v
}

func (v Vote) WithStopShort(price float64) Vote {
	v.Aux.StopShort = Float(price)
	return v
}

// QualityOr returns the vote quality or def when the indicator left it unset.
func (v Vote) QualityOr(def float64) float64 {
	if v.Quality == nil {
		return def
	}
	return *v.Quality
}

// Normalize enforces the vote contract: directional sign follows direction,
// values are clamped, abstaining votes carry no conviction and any
// non-finite output turns the vote invalid.
func (v Vote) Normalize() Vote {
	if !v.Valid {
		return Invalid(v.ID, v.Reason)
	}

	if !isFinite(v.Directional) || !isFinite(v.Confidence) ||
		(v.Quality != nil && !isFinite(*v.Quality)) {
		return Invalid(v.ID, "non-finite indicator output")
	}

	v.Aux = Aux{
		ATR:       finiteOrNil(v.Aux.ATR),
		StopLong:  finiteOrNil(v.Aux.StopLong),
		StopShort: finiteOrNil(v.Aux.StopShort),
	}

	switch {
	case v.Direction > 0:
		v.Direction = Buy
	case v.Direction < 0:
		v.Direction = Sell
	}

	if v.Direction == None {
		v.Directional = 0
		v.Entry = NoTrigger
	} else {
		mag := math.Min(math.Abs(v.Directional), 1)
		if mag == 0 {
			mag = 1
		}
		v.Directional = mag * v.Direction.Sign()
	}

	v.Confidence = clamp(v.Confidence, 0, 1)
	if v.Quality != nil {
		v.Quality = Float(clamp(*v.Quality, 0, 1))
	}

	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || !isFinite(*v) {
		return nil
	}
	return Float(*v)
}
