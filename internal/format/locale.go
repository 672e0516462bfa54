package format

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrUnknownLocale is returned by Lookup for unsupported locale names.
var ErrUnknownLocale = errors.New("format: unknown locale")

// SymbolPosition places the currency symbol relative to the amount.
type SymbolPosition int

const (
	SymbolBefore SymbolPosition = iota
	SymbolAfter
)

// Locale carries every presentation choice a Formatter needs.
type Locale struct {
	Name           string
	Tag            language.Tag
	Currency       string
	SymbolPosition SymbolPosition
	ThousandSuffix string
	MillionSuffix  string
	PercentSuffix  string
	Placeholder    string
}

var builtin = []Locale{
	{
		Name:           "en-US",
		Tag:            language.AmericanEnglish,
		Currency:       "EUR",
		SymbolPosition: SymbolBefore,
		ThousandSuffix: "K",
		MillionSuffix:  "M",
		PercentSuffix:  "%",
		Placeholder:    "N/A",
	},
	{
		Name:           "de-DE",
		Tag:            language.MustParse("de-DE"),
		Currency:       "EUR",
		SymbolPosition: SymbolAfter,
		ThousandSuffix: " Tsd.",
		MillionSuffix:  " Mio.",
		PercentSuffix:  " %",
		Placeholder:    "k. A.",
	},
}

// DefaultLocale is the locale used when none is requested.
const DefaultLocale = "en-US"

// Lookup resolves a locale by name. Bare language codes ("de") and
// underscores ("de_DE") are accepted; an empty name yields DefaultLocale.
func Lookup(name string) (Locale, error) {
	key := strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	if key == "" {
		key = DefaultLocale
	}
	for _, loc := range builtin {
		if strings.EqualFold(loc.Name, key) {
			return loc, nil
		}
	}
	for _, loc := range builtin {
		base, _ := loc.Tag.Base()
		if strings.EqualFold(base.String(), key) {
			return loc, nil
		}
	}
	return Locale{}, fmt.Errorf("%w: %q", ErrUnknownLocale, name)
}

// Locales lists the supported locales in a stable order.
func Locales() []Locale {
	out := make([]Locale, len(builtin))
	copy(out, builtin)
	return out
}

// Names lists the supported locale names.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for _, loc := range builtin {
		out = append(out, loc.Name)
	}
	return out
}
