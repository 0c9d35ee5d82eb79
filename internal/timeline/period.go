package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2/1/2006"
)

// ParsePeriod parses a period header. "YYYY-MM" covers that calendar month;
// "D/M/Y-D/M/Y" gives explicit inclusive bounds.
func ParsePeriod(header string) (model.Period, error) {
	h := strings.TrimSpace(header)
	if h == "" {
		return model.Period{}, fmt.Errorf("empty period header")
	}

	if !strings.Contains(h, "/") {
		start, err := time.Parse(monthLayout, h)
		if err != nil {
			return model.Period{}, fmt.Errorf("expected YYYY-MM or D/M/Y-D/M/Y, got %q", h)
		}
		return model.Period{Start: start, End: start.AddDate(0, 1, -1), Header: header}, nil
	}

	from, to, ok := strings.Cut(h, "-")
	if !ok {
		return model.Period{}, fmt.Errorf("range %q has no end date", h)
	}
	start, err := time.Parse(dayLayout, strings.TrimSpace(from))
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid start date %q", strings.TrimSpace(from))
	}
	end, err := time.Parse(dayLayout, strings.TrimSpace(to))
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid end date %q", strings.TrimSpace(to))
	}
	if end.Before(start) {
		return model.Period{}, fmt.Errorf("range %q ends before it starts", h)
	}
	return model.Period{Start: start, End: end, Header: header}, nil
}

// AmountFormat describes the separators used in amount cells.
type AmountFormat struct {
	Symbol       string
	ThousandsSep string
	DecimalSep   string
}

// DefaultAmountFormat reads plain amounts like "-1234.56" or "1,234.56".
var DefaultAmountFormat = AmountFormat{Symbol: "$", ThousandsSep: ",", DecimalSep: "."}

// ParseAmount parses a signed amount cell. ok is false for blank or
// non-numeric cells, which are no observation rather than zero.
func ParseAmount(cell string, f AmountFormat) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, false
	}

	if f.Symbol != "" {
		s = strings.ReplaceAll(s, f.Symbol, "")
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", `"`, "", "'", "").Replace(s)
	if f.ThousandsSep != "" {
		s = strings.ReplaceAll(s, f.ThousandsSep, "")
	}
	if f.DecimalSep != "" && f.DecimalSep != "." {
		s = strings.ReplaceAll(s, f.DecimalSep, ".")
	}

	// Accounting style negatives: (1234) is -1234.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DeriveTemporal sets the calendar attributes of rec from its period start.
func DeriveTemporal(rec model.LongRecord) model.LongRecord {
	m := int(rec.PeriodStart.Month())
	rec.Year = rec.PeriodStart.Year()
	rec.Month = m
	rec.MonthName = model.MonthName(m)
	rec.Quarter = model.QuarterOf(m)
	return rec
}
