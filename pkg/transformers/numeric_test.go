package transformers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   *float64
		wantOK bool
	}{
		{name: "currency with thousands separator", in: "$1,299.50", want: ptr(1299.5), wantOK: true},
		{name: "rupee symbol", in: "₹32,999", want: ptr(32999), wantOK: true},
		{name: "plain number text", in: "499", want: ptr(499), wantOK: true},
		{name: "not available", in: "N/A", want: nil, wantOK: true},
		{name: "digit free text", in: "free", want: nil, wantOK: false},
		{name: "empty", in: "", want: nil, wantOK: true},
		{name: "non ascii digit", in: "٣", want: nil, wantOK: false},
		{name: "two decimal points", in: "1.2.3", want: nil, wantOK: false},
		{name: "float passes through", in: 12.25, want: ptr(12.25), wantOK: true},
		{name: "int passes through", in: 7, want: ptr(7), wantOK: true},
		{name: "nan is missing", in: math.NaN(), want: nil, wantOK: true},
		{name: "nil is missing", in: nil, want: nil, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanPrice(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestCleanFloatMissingIsNotZero(t *testing.T) {
	got, ok := CleanFloat("NaN")
	assert.True(t, ok)
	assert.Nil(t, got)

	got, ok = CleanFloat("0")
	assert.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)

	got, ok = CleanFloat("Get")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCleanInt(t *testing.T) {
	got, ok := CleanInt("1,234")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, int64(1234), *got)

	got, ok = CleanInt(42.9)
	require.True(t, ok)
	assert.Equal(t, int64(42), *got)

	got, ok = CleanInt("")
	assert.True(t, ok)
	assert.Nil(t, got)

	got, ok = CleanInt("many")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCleanIntOutOfRange(t *testing.T) {
	for _, in := range []any{1e20, -1e20, "99999999999999999999", "1e19", math.Inf(1)} {
		got, ok := CleanInt(in)
		assert.False(t, ok, "input %v", in)
		assert.Nil(t, got, "input %v", in)
	}

	got, ok := CleanInt("9223372036854775807")
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), *got)
}

func TestRound1HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 4.7, Round1(4.666666666))
	assert.Equal(t, 0.3, Round1(0.25))
	assert.Equal(t, -0.3, Round1(-0.25))
	assert.Equal(t, 3.0, Round1(3))
}

func ptr(f float64) *float64 { return &f }
