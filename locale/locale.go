/*
Package locale provides display labels and money formatting.

PURPOSE:
  The books themselves are language- and currency-neutral: amounts are bare
  decimals. This package is the display side only. It picks one of the
  supported languages for a request and formats amounts for it.

SUPPORTED:
  Languages:  en (default), es, fr
  Currencies: any ISO 4217 code known to golang.org/x/text/currency; the
              settings screen offers USD, EUR, GBP and MAD.

FALLBACK:
  Unknown languages resolve to English; a key missing from a translation
  falls back to the English label, then to the key itself.
*/
package locale

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// SupportedCurrencies are the currencies offered in settings.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "MAD"}

var (
	supported = []language.Tag{language.English, language.Spanish, language.French}
	codes     = []string{"en", "es", "fr"}
	matcher   = language.NewMatcher(supported)
)

// Match resolves a language code or an Accept-Language header value to a
// supported code.
func Match(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "en"
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "en"
	}
	return codes[index]
}

// Labels returns the full label set for a language.
func Labels(lang string) map[string]string {
	code := Match(lang)
	out := make(map[string]string, len(labels["en"]))
	for k, v := range labels["en"] {
		out[k] = v
	}
	for k, v := range labels[code] {
		out[k] = v
	}
	return out
}

// Label returns one label.
func Label(lang, key string) string {
	if v, ok := labels[Match(lang)][key]; ok {
		return v
	}
	if v, ok := labels["en"][key]; ok {
		return v
	}
	return key
}

// =============================================================================
// FORMATTING
// =============================================================================

// ParseCurrency validates an ISO 4217 code.
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return unit, nil
}

// FormatAmount renders amount with the currency symbol for lang.
func FormatAmount(amount decimal.Decimal, currencyCode, lang string) (string, error) {
	unit, err := ParseCurrency(currencyCode)
	if err != nil {
		return "", err
	}
	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(language.MustParse(Match(lang)))
	rounded := amount.Round(int32(scale)).InexactFloat64()
	return p.Sprint(currency.Symbol(unit.Amount(rounded))), nil
}

// FormatNumber renders a plain number with lang's separators.
func FormatNumber(amount decimal.Decimal, lang string) string {
	p := message.NewPrinter(language.MustParse(Match(lang)))
	return p.Sprint(number.Decimal(amount.InexactFloat64()))
}
