// Package format renders metric values for a locale.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
)

// Formatter renders values for a single locale. It is safe for concurrent use.
type Formatter struct {
	locale  Locale
	printer *message.Printer
	symbol  string
}

// New builds a formatter for locale.
func New(locale Locale) *Formatter {
	f := &Formatter{locale: locale, printer: message.NewPrinter(locale.Tag)}
	f.symbol = f.currencySymbol(locale.Currency)
	return f
}

// Locale returns the locale the formatter was built with.
func (f *Formatter) Locale() Locale {
	return f.locale
}

// Placeholder is the text shown for unavailable values.
func (f *Formatter) Placeholder() string {
	return f.locale.Placeholder
}

// Count abbreviates large counts: 1.5M / 1,5 Mio., 2.5K / 2,5 Tsd.
func (f *Formatter) Count(v campaign.Value) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	abs := math.Abs(x)
	switch {
	case abs >= 1_000_000:
		return f.fixed(x/1_000_000, 1) + f.locale.MillionSuffix
	case abs >= 1_000:
		return f.fixed(x/1_000, 1) + f.locale.ThousandSuffix
	default:
		return f.printer.Sprint(number.Decimal(x))
	}
}

// Integer renders a grouped whole number without abbreviation.
func (f *Formatter) Integer(v campaign.Value) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	return f.fixed(math.Round(x), 0)
}

// Currency renders an amount in the locale currency with two decimals.
func (f *Formatter) Currency(v campaign.Value) string {
	return f.money(v, f.symbol, 2)
}

// CurrencyIn renders an amount in the given ISO 4217 currency.
func (f *Formatter) CurrencyIn(v campaign.Value, code string) string {
	return f.money(v, f.currencySymbol(code), 2)
}

// WholeCurrency renders an amount in the locale currency without decimals.
func (f *Formatter) WholeCurrency(v campaign.Value) string {
	return f.money(v, f.symbol, 0)
}

// Percent renders a percentage with two decimals.
func (f *Formatter) Percent(v campaign.Value) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	return f.fixed(x, 2) + f.locale.PercentSuffix
}

// Ratio renders a plain ratio such as ROAS with two decimals.
func (f *Formatter) Ratio(v campaign.Value) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	return f.fixed(x, 2)
}

// Decimal renders a number with a fixed number of decimals.
func (f *Formatter) Decimal(v campaign.Value, scale int) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	return f.fixed(x, scale)
}

func (f *Formatter) money(v campaign.Value, symbol string, scale int) string {
	x, ok := v.Get()
	if !ok {
		return f.locale.Placeholder
	}
	amount := f.fixed(x, scale)
	if f.locale.SymbolPosition == SymbolAfter {
		return amount + " " + symbol
	}
	if strings.HasPrefix(amount, "-") {
		return "-" + symbol + amount[1:]
	}
	return symbol + amount
}

// fixed rounds ties away from zero; number.Decimal alone rounds them to even.
func (f *Formatter) fixed(x float64, scale int) string {
	return f.printer.Sprint(number.Decimal(roundHalfUp(x, scale), number.Scale(scale)))
}

func roundHalfUp(x float64, scale int) float64 {
	pow := math.Pow10(scale)
	r := math.Round(x*pow) / pow
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return x
	}
	return r
}

func (f *Formatter) currencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return f.printer.Sprint(currency.Symbol(unit))
}
