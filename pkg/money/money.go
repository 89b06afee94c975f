// Package money holds the rounding and display rules shared by every calculation.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every amount is rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds the amounts, rounding after every step.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = Round(total.Add(a))
	}
	return total
}

// Prorate scales amount by used/inYear and rounds.
func Prorate(amount decimal.Decimal, used, inYear int) decimal.Decimal {
	if inYear <= 0 {
		return decimal.Zero
	}
	return Round(amount.Mul(decimal.NewFromInt(int64(used))).Div(decimal.NewFromInt(int64(inYear))))
}

// Percent renders a rate such as 0.181 as "18.10%".
func Percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(2) + "%"
}

// FormatINR renders an amount with the rupee sign and Indian digit grouping,
// e.g. 1234567.5 -> "₹12,34,567.50".
func FormatINR(d decimal.Decimal) string {
	s := Round(d).Abs().StringFixed(Places)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(Places).IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(whole))
	b.WriteString(".")
	b.WriteString(frac)
	return b.String()
}

// groupIndian groups the last three digits, then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, last3 := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, last3), ",")
}
