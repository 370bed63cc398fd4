// Package format renders amounts for display in one of the supported currencies.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnsupportedCurrency is returned for codes outside Currencies.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currencies are the display currencies offered by the calculator.
var Currencies = []string{"USD", "EUR", "GBP", "SAR", "AED", "QAR"}

var printer = message.NewPrinter(language.English)

// Supported reports whether code is one of Currencies.
func Supported(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// Unit resolves a supported ISO 4217 code.
func Unit(code string) (currency.Unit, error) {
	if !Supported(code) {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
}

// Number renders d with thousands separators and two decimals. The digits
// come straight from the decimal, so large amounts are not rounded through float64.
func Number(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + group(whole) + "." + frac
}

// group inserts a comma every three digits from the right.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// Money renders d with the currency's symbol, e.g. "$ 1,234.50".
func Money(d decimal.Decimal, code string) (string, error) {
	unit, err := Unit(code)
	if err != nil {
		return "", err
	}
	return printer.Sprintf("%v %s", currency.Symbol(unit), Number(d)), nil
}

// ISO renders d prefixed by its ISO code, e.g. "USD 1,234.50".
func ISO(d decimal.Decimal, code string) (string, error) {
	unit, err := Unit(code)
	if err != nil {
		return "", err
	}
	return unit.String() + " " + Number(d), nil
}
