package chain

import (
	"github.com/shopspring/decimal"
)

// Decimals is the uniform smallest-unit precision for the native asset
// and every jetton handled by the bot.
const Decimals = 9

// displayPlaces is the rounding applied to balances shown to users.
const displayPlaces = 4

// FromNano converts a smallest-unit amount to its display value.
func FromNano(n int64) decimal.Decimal {
	return decimal.New(n, -Decimals)
}

// ToNano converts a display amount to smallest units, truncating
// anything below one nano.
func ToNano(d decimal.Decimal) int64 {
	return d.Shift(Decimals).IntPart()
}

// Display rounds an amount to the 4 decimal places shown to users.
func Display(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayPlaces)
}
