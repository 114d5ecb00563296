// Package currency maps countries to display currencies and converts the
// site's reference amounts (quoted in BRL) into a visitor-local currency.
// The country and rate tables are immutable reference data, refreshed by hand
// when the marketing team updates pricing pages.
package currency

import (
	"strings"
	"unicode"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Reference is the currency all exchange rates are expressed relative to.
const Reference = "BRL"

// countryCurrency maps ISO 3166-1 alpha-2 country codes to ISO 4217 currency
// codes. Unlisted countries fall back to USD.
var countryCurrency = map[string]string{
	"BR": "BRL",
	"US": "USD",
	"CA": "CAD",
	"GB": "GBP",
	"AU": "AUD",
	"NZ": "NZD",
	"JP": "JPY",
	"CH": "CHF",
	"MX": "MXN",
	"AR": "ARS",
	"CL": "CLP",
	"CO": "COP",
	"PE": "PEN",
	"UY": "UYU",
	"IN": "INR",
	"CN": "CNY",
	"KR": "KRW",
	"ZA": "ZAR",
	"SE": "SEK",
	"NO": "NOK",
	"DK": "DKK",
	"PL": "PLN",
	"CZ": "CZK",
	"PT": "EUR",
	"ES": "EUR",
	"FR": "EUR",
	"DE": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"BE": "EUR",
	"AT": "EUR",
	"IE": "EUR",
	"FI": "EUR",
	"GR": "EUR",
	"LU": "EUR",
}

// rates holds multipliers from the reference currency (BRL) to the target
// currency. One BRL buys rates[code] units of code.
var rates = map[string]float64{
	"BRL": 1.0,
	"USD": 0.20,
	"EUR": 0.18,
	"GBP": 0.155,
	"CAD": 0.27,
	"AUD": 0.30,
	"NZD": 0.33,
	"JPY": 29.0,
	"CHF": 0.175,
	"MXN": 3.4,
	"ARS": 175.0,
	"CLP": 185.0,
	"COP": 800.0,
	"PEN": 0.74,
	"UYU": 7.8,
	"INR": 16.8,
	"CNY": 1.42,
	"KRW": 265.0,
	"ZAR": 3.6,
	"SEK": 2.1,
	"NOK": 2.1,
	"DKK": 1.35,
	"PLN": 0.78,
	"CZK": 4.5,
}

// ForCountry returns the ISO 4217 currency code for a country code, defaulting
// to USD when the country is unmapped.
func ForCountry(code string) string {
	if cur, ok := countryCurrency[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return cur
	}
	return "USD"
}

// Convert multiplies a reference-currency amount by the static rate for the
// target currency.
//
// Quirk preserved from the original behavior: when the target currency has no
// rate entry, the amount is multiplied by the reference currency's own rate
// (1.0) instead of being truly converted. The result is an under-converted
// amount labeled with a currency it was never converted to. Do not "fix"
// silently; the tests pin this down.
func Convert(amountInReference float64, target string) float64 {
	rate, ok := rates[strings.ToUpper(strings.TrimSpace(target))]
	if !ok {
		rate = rates[Reference]
	}
	return amountInReference * rate
}

// Format renders an amount in the given currency for a locale, with zero
// fractional digits. It never fails: unsupported currency/locale combinations
// fall back to a manually assembled "symbol + grouped number" string.
func Format(amount float64, code, locale string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	tag, err := language.Parse(locale)
	if err != nil {
		return fallbackFormat(amount, code)
	}

	unit, err := xcurrency.ParseISO(code)
	if err != nil || unit.String() == "XXX" {
		return fallbackFormat(amount, code)
	}

	printer := message.NewPrinter(tag)
	opts := []number.Option{number.MaxFractionDigits(0), number.MinFractionDigits(0)}
	formatted := printer.Sprintf("%v", number.Decimal(amount, opts...))

	symbol := extractSymbol(printer, unit, amount)
	if symbol == "" {
		symbol = code
	}

	base, _ := tag.Base()
	switch base.String() {
	case "es":
		return formatted + " " + symbol
	case "en":
		return symbol + formatted
	default:
		return symbol + " " + formatted
	}
}

// extractSymbol derives the locale symbol by formatting the amount with
// x/text's currency symbol verb and stripping the numeric part back out.
func extractSymbol(printer *message.Printer, unit xcurrency.Unit, amount float64) string {
	full := printer.Sprintf("%v", xcurrency.Symbol(unit.Amount(amount)))
	return strings.TrimFunc(full, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == ',' || unicode.IsSpace(r)
	})
}

// fallbackSymbols covers the currencies the site actually quotes in; anything
// else renders with its ISO code.
var fallbackSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"BRL": "R$",
	"GBP": "£",
	"JPY": "¥",
}

func fallbackFormat(amount float64, code string) string {
	symbol, ok := fallbackSymbols[code]
	if !ok {
		symbol = code + " "
	}
	return symbol + groupDigits(amount)
}

// groupDigits renders an amount with comma thousand separators and no
// fractional digits.
func groupDigits(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount + 0.5)

	raw := []byte{}
	if whole == 0 {
		raw = append(raw, '0')
	}
	for whole > 0 {
		raw = append(raw, byte('0'+whole%10))
		whole /= 10
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i := len(raw) - 1; i >= 0; i-- {
		b.WriteByte(raw[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte(',')
		}
	}
	return b.String()
}
