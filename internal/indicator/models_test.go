package indicator

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVote_Normalize(t *testing.T) {
	tbl := []struct {
		in  Vote
		out Vote
	}{
		{
			in:  Vote{ID: "x", Direction: Buy, Directional: 0.4, Confidence: 1.7, Valid: true},
			out: Vote{ID: "x", Direction: Buy, Directional: 0.4, Confidence: 1, Valid: true},
		},
		{
			in:  Vote{ID: "x", Direction: Sell, Directional: 0.5, Confidence: 0.3, Valid: true},
			out: Vote{ID: "x", Direction: Sell, Directional: -0.5, Confidence: 0.3, Valid: true},
		},
		{
			in:  Vote{ID: "x", Direction: Buy, Confidence: 0.3, Valid: true},
			out: Vote{ID: "x", Direction: Buy, Directional: 1, Confidence: 0.3, Valid: true},
		},
		{
			in:  Vote{ID: "x", Direction: None, Directional: 0.8, Entry: Triggered, Confidence: 0.3, Valid: true},
			out: Vote{ID: "x", Direction: None, Directional: 0, Entry: NoTrigger, Confidence: 0.3, Valid: true},
		},
		{
			in:  Vote{ID: "x", Direction: Direction(5), Directional: -3, Confidence: -1, Valid: true},
			out: Vote{ID: "x", Direction: Buy, Directional: 1, Confidence: 0, Valid: true},
		},
		{
			in:  Vote{ID: "x", Direction: Buy, Directional: 1, Confidence: 0.5, Valid: false, Reason: "short"},
			out: Vote{ID: "x", Direction: None, Reason: "short"},
		},
		{
			in:  Vote{ID: "x", Direction: Buy, Directional: 1, Confidence: math.NaN(), Valid: true},
			out: Vote{ID: "x", Direction: None, Reason: "non-finite indicator output"},
		},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.out, c.in.Normalize())
		})
	}
}

func TestVote_NormalizeClampsQualityAndDropsBadAux(t *testing.T) {
	v := NewVote("x", Buy, 0.5).
		WithQuality(1.4).
		WithATR(math.Inf(1)).
		WithStopLong(95).
		WithStopShort(math.NaN()).
		Normalize()

	require.True(t, v.Valid)
	require.NotNil(t, v.Quality)
	assert.Equal(t, 1.0, *v.Quality)
	assert.Nil(t, v.Aux.ATR)
	assert.Nil(t, v.Aux.StopShort)
	require.NotNil(t, v.Aux.StopLong)
	assert.Equal(t, 95.0, *v.Aux.StopLong)
}

func TestVote_QualityOr(t *testing.T) {
	assert.Equal(t, 0.9, NewVote("x", Buy, 1).QualityOr(0.9))
	assert.Equal(t, 0.4, NewVote("x", Buy, 1).WithQuality(0.4).QualityOr(0.9))
}

func TestInvalid(t *testing.T) {
	v := Invalid("rsi", "boom")
	assert.False(t, v.Valid)
	assert.Equal(t, None, v.Direction)
	assert.Zero(t, v.Directional)
	assert.Zero(t, v.Confidence)
}

func TestDirection_MarshalText(t *testing.T) {
	for d, s := range map[Direction]string{Buy: "buy", Sell: "sell", None: "none"} {
		b, err := d.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, s, string(b))
	}

	b, err := Triggered.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "triggered", string(b))
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Buy, DirectionOf(0.01))
	assert.Equal(t, Sell, DirectionOf(-2))
	assert.Equal(t, None, DirectionOf(0))
}
