package util

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Operators read Brazilian number formatting: "3.200,00".
var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount in reais, e.g. "R$ 3.200,00".
func FormatBRL(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-R$ " + formatFixed(d.Neg(), 2)
	}
	return "R$ " + formatFixed(d, 2)
}

// FormatDecimal renders an amount with two decimals and no currency symbol.
func FormatDecimal(d decimal.Decimal) string {
	return formatFixed(d, 2)
}

// FormatNumber renders f with the given number of decimals, e.g. "1.234,5".
func FormatNumber(f float64, places int) string {
	return brPrinter.Sprintf(fmt.Sprintf("%%.%df", places), f)
}

// FormatPercent renders a percentage with one decimal, e.g. "87,5%".
func FormatPercent(f float64) string {
	return FormatNumber(f, 1) + "%"
}

// formatFixed groups the integer part of the exact decimal and renders the
// fraction with the locale separator, avoiding a float round trip.
func formatFixed(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	whole, err := decimal.NewFromString(intPart)
	if err != nil {
		return s
	}
	grouped := brPrinter.Sprintf("%d", whole.IntPart())
	if neg {
		grouped = "-" + grouped
	}
	if frac == "" {
		return grouped
	}
	return grouped + "," + frac
}
