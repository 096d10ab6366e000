package render

import (
	"fmt"
	"strings"

	"github.com/oagudelo/mgadoc/internal/money"
)

// FormatCOP renders an amount the way MGA documents print currency:
// "$ 4.500.000,00".
func FormatCOP(a money.Amount) string {
	return "$ " + a.Format()
}

// FormatPercent renders a ratio as a percentage with one decimal, comma as
// decimal separator: "14,9 %".
func FormatPercent(ratio float64) string {
	s := fmt.Sprintf("%.1f", ratio*100)
	return strings.Replace(s, ".", ",", 1) + " %"
}
