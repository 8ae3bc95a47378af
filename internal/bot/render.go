package bot

import (
	"strings"

	"github.com/tontrade/tontrade/internal/balance"
)

// renderSnapshot formats the balance view, one token per line:
// symbol, amount to 4 places, USD value to 2 places or N/A.
func renderSnapshot(snap *balance.Snapshot) string {
	if snap.Len() == 0 {
		return "No balances to show."
	}

	var b strings.Builder
	b.WriteString("Your balances:\n")
	for _, e := range snap.Entries() {
		b.WriteString("\n")
		b.WriteString(e.Symbol)
		b.WriteString(" | ")
		b.WriteString(e.Balance.StringFixed(4))
		b.WriteString(" | ")
		if e.Price == nil {
			b.WriteString("N/A")
		} else {
			b.WriteString("$")
			b.WriteString(e.Balance.Mul(*e.Price).StringFixed(2))
		}
	}
	return b.String()
}
