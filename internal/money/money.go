// Package money renders amounts for messages shown to users.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formats amounts in one currency for one language.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter returns a Formatter for an ISO 4217 currency code and a BCP 47 language tag.
func NewFormatter(code, lang string) (Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Formatter{}, fmt.Errorf("unknown currency %q: %w", code, err)
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return Formatter{}, fmt.Errorf("unknown language %q: %w", lang, err)
	}

	return Formatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Format renders d with two decimals and the grouping of the language, e.g. "INR 1,050.50".
func (f Formatter) Format(d decimal.Decimal) string {
	value, _ := d.Round(2).Float64()
	return f.printer.Sprintf("%s %v", f.unit.String(), number.Decimal(value, number.Scale(2)))
}
