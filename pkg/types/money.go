package types

import "github.com/shopspring/decimal"

// RoundMoney normalizes a monetary amount to 2 decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MoneyFloat converts a monetary amount to the float representation used in
// JSON payloads. Amounts are rounded before conversion so the float carries at
// most two fractional digits.
func MoneyFloat(d decimal.Decimal) float64 {
	f, _ := RoundMoney(d).Float64()
	return f
}
