package renderer

import (
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats an amount in currency, like "$1,234.50". Without a currency the amount
// is formatted with two decimals.
func Money(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	code := strings.ToUpper(currency)
	fraction := 2
	if c := money.GetCurrency(code); c != nil {
		fraction = c.Fraction
	}
	// rounded to the minor unit, money.NewFromFloat truncates.
	return money.New(int64(math.Round(amount*math.Pow10(fraction))), code).Display()
}

// funcs returns the template functions, formatting amounts in currency.
func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(v any) string {
			switch v := v.(type) {
			case decimal.Decimal:
				return Money(v.InexactFloat64(), currency)
			case float64:
				return Money(v, currency)
			}
			return fmt.Sprint(v)
		},
		// percent formats a 0-1 fraction.
		"percent": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		// points formats a value already in percent.
		"points": func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
		"z":      func(v float64) string { return fmt.Sprintf("%+.2f", v) },
		"fixed":  func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"join":   strings.Join,
	}
}
