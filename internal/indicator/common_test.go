package indicator

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCrossOver(t *testing.T) {
	tbl := []struct {
		data      []float64
		lookback  int
		crossover bool
	}{
		{data: []float64{}, lookback: 0, crossover: false},
		{data: []float64{}, lookback: 100, crossover: false},
		{data: []float64{-1, 1}, lookback: 1, crossover: true},
		{data: []float64{1, -1}, lookback: 1, crossover: true},
		{data: []float64{1, -1}, lookback: 100, crossover: true},
		{data: []float64{1, -1, 2, 3}, lookback: 1, crossover: false},
		{data: []float64{1, -1, 2, 3}, lookback: 2, crossover: true},
		{data: []float64{1, 10, -2, -3}, lookback: 1, crossover: false},
		{data: []float64{1, 10, -2, -3}, lookback: 2, crossover: true},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.crossover, hasCrossOver(c.data, c.lookback))
		})
	}
}

func TestParams(t *testing.T) {
	p := Params{"period": 14, "bad": math.NaN(), "zero": 0, "frac": 2.7}

	assert.Equal(t, 14, p.Period("period", 3))
	assert.Equal(t, 3, p.Period("missing", 3))
	assert.Equal(t, 3, p.Period("zero", 3))
	assert.Equal(t, 2, p.Period("frac", 3))
	assert.Equal(t, 1.5, p.Float("bad", 1.5))
	assert.Equal(t, 2.7, p.Float("frac", 1.5))

	var empty Params
	assert.Equal(t, 9, empty.Period("fast", 9))
}

func TestTail(t *testing.T) {
	assert.Equal(t, []float64{2, 3}, tail([]float64{1, 2, 3}, 2))
	assert.Equal(t, []float64{1, 2, 3}, tail([]float64{1, 2, 3}, 5))
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 4.0, maxAbs([]float64{1, -4, 3}))
	assert.Equal(t, 0.0, maxAbs(nil))
}
