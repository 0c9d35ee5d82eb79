// Package format renders amounts, percentages and periods for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/hierarchy"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Currency formats amounts with a configured currency format.
type Currency struct {
	cfg hierarchy.CurrencyFormat
}

// NewCurrency creates a Currency formatter.
func NewCurrency(cfg hierarchy.CurrencyFormat) *Currency {
	return &Currency{cfg: cfg}
}

// Format renders d with grouping, decimal places and symbol. With signed set,
// non-zero amounts carry an explicit + or -; otherwise only negatives do.
func (c *Currency) Format(d decimal.Decimal, signed bool) string {
	sign := ""
	switch {
	case d.IsNegative():
		sign = "-"
	case signed && d.IsPositive():
		sign = "+"
	}

	body := c.Number(d.Abs())
	if c.cfg.SymbolPosition == "after" {
		return sign + body + c.cfg.Symbol
	}
	return sign + c.cfg.Symbol + body
}

// Number renders d with the configured separators and no symbol.
func (c *Currency) Number(d decimal.Decimal) string {
	fixed := d.StringFixed(int32(c.cfg.DecimalPlaces))

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	out := group(intPart, c.cfg.ThousandsSep)
	if frac != "" {
		out += c.cfg.DecimalSep + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// Abbreviate renders d as a short magnitude: 1.5K, 2.3M, 1.0B.
func Abbreviate(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	v := d.Abs().InexactFloat64()
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s%.1fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s%.1fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%.1fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s%.0f", sign, v)
	}
}

// Percent renders a percentage value (0-100 scale) with places decimals.
func Percent(v float64, places int) string {
	return fmt.Sprintf("%.*f%%", places, v)
}

// Ratio renders a fraction (0-1 scale) as a percentage.
func Ratio(v float64, places int) string {
	return Percent(v*100, places)
}

// MonthYear renders "January 2024".
func MonthYear(year, month int) string {
	name := model.MonthName(month)
	if name == "" {
		return fmt.Sprintf("%d-%02d", year, month)
	}
	return fmt.Sprintf("%s %d", name, year)
}

// Period renders an inclusive date range as "D/M/Y - D/M/Y".
func Period(start, end time.Time) string {
	return start.Format("02/01/2006") + " - " + end.Format("02/01/2006")
}
