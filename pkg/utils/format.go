// Package utils provides number and time formatting shared by the report
// renderers and the CLI.
package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatAmount formats a number with thousands separators and a fixed
// number of decimals, e.g. 3218438 → "3,218,438.00".
func FormatAmount(amount float64, decimals int) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Sprintf("%v", amount)
	}
	// Avoid "-0.00" for tiny negatives that round to zero.
	if amount < 0 && roundTo(amount, decimals) == 0 {
		amount = 0
	}
	return printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

// FormatPlain formats a number without grouping, e.g. 0.25 → "0.2500".
func FormatPlain(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}

// FormatPct formats a fraction as a percentage, e.g. 0.25 → "25.00%".
func FormatPct(fraction float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, fraction*100)
}

// FormatCompact formats a large amount with a K/M/B suffix, trimming
// trailing zeros, e.g. 4399581 → "4.4 M".
func FormatCompact(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}

	switch {
	case amount >= 1e9:
		return sign + formatWithDecimals(amount/1e9) + " B"
	case amount >= 1e6:
		return sign + formatWithDecimals(amount/1e6) + " M"
	case amount >= 1e3:
		return sign + formatWithDecimals(amount/1e3) + " K"
	default:
		return sign + formatWithDecimals(amount)
	}
}

// FormatTimestamp formats t in UTC for report headers.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("02 Jan 2006, 15:04 MST")
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
