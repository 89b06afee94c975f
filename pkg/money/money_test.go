package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	assert.True(t, Round(dec("1.005")).Equal(dec("1.01")))
	assert.True(t, Round(dec("1.004")).Equal(dec("1.00")))
	assert.True(t, Round(dec("-2.345")).Equal(dec("-2.35")))
}

func TestSum(t *testing.T) {
	got := Sum(dec("0.1"), dec("0.2"), dec("0.3"))
	assert.True(t, got.Equal(dec("0.6")), got.String())
}

func TestProrate(t *testing.T) {
	assert.Equal(t, "4500.00", Prorate(dec("9000"), 182, 364).StringFixed(2))
	assert.Equal(t, "4487.67", Prorate(dec("9000"), 182, 365).StringFixed(2))
	assert.True(t, Prorate(dec("9000"), 10, 0).IsZero())
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(dec("-5")).IsZero())
	assert.True(t, NonNegative(dec("5")).Equal(dec("5")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "18.10%", Percent(dec("0.181")))
	assert.Equal(t, "7.50%", Percent(dec("0.075")))
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"999", "₹999.00"},
		{"1000", "₹1,000.00"},
		{"123456.789", "₹1,23,456.79"},
		{"1234567.5", "₹12,34,567.50"},
		{"-81450", "-₹81,450.00"},
		{"100000000", "₹10,00,00,000.00"},
		{"-0.001", "₹0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatINR(dec(tt.in)), tt.in)
	}
}
