package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"40", 4000},
		{"40.5", 4050},
		{"149.99", 14999},
		{"0.01", 1},
		{".75", 75},
		{"12.500", 1250},
		{"-3.10", -310},
		{"92233720368547758.07", Cents(math.MaxInt64)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", ".", "abc", "1.234", "1,50", "1.2.3", "--1",
		"92233720368547758.08", "100000000000000000", "184467440737095517"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestStringAndMul(t *testing.T) {
	assert.Equal(t, "270.00", (FromUnits(40, 0).Mul(3) + FromUnits(150, 0)).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-1.20", Cents(-120).String())
}

func TestJSON(t *testing.T) {
	var v struct {
		Price Cents `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":39.9}`), &v))
	assert.Equal(t, Cents(3990), v.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.05"}`), &v))
	assert.Equal(t, Cents(1205), v.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":1e3}`), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.05}`, string(out))
}
