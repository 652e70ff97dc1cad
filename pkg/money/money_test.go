package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "100", want: "100"},
		{name: "decimal", input: "99.95", want: "99.95"},
		{name: "negative", input: "-42.50", want: "-42.5"},
		{name: "high precision", input: "0.000000001", want: "0.000000001"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "12.3.4", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestEqual(t *testing.T) {
	a := decimal.RequireFromString("100.00")
	b := decimal.RequireFromString("100")
	assert.True(t, Equal(a, b))

	// Within epsilon
	c := decimal.RequireFromString("100.0000000000005")
	assert.True(t, Equal(a, c))

	// Outside epsilon
	d := decimal.RequireFromString("100.01")
	assert.False(t, Equal(a, d))

	// Sign matters
	assert.False(t, Equal(a, a.Neg()))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())

	got := Sum(
		decimal.RequireFromString("10.5"),
		decimal.RequireFromString("-3.25"),
		decimal.RequireFromString("0.75"),
	)
	assert.Equal(t, "8", got.String())
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(decimal.Zero))
	assert.True(t, IsZero(decimal.New(1, -12)))
	assert.False(t, IsZero(decimal.New(1, -2)))
}
