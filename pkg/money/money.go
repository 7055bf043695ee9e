// Package money convierte montos en unidades menores (centavos) a texto y a decimales
// según la moneda de la sesión.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formatea montos de una moneda con los separadores de un idioma.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	scale   int32
	pattern string
}

// NewFormatter valida el código ISO 4217 y la etiqueta de idioma.
func NewFormatter(code, lang string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("moneda inválida %q: %w", code, err)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("idioma inválido %q: %w", lang, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
		scale:   int32(scale),
		pattern: fmt.Sprintf("%%s %%.%df", scale),
	}, nil
}

// Code código ISO de la moneda.
func (f *Formatter) Code() string { return f.unit.String() }

// Scale cantidad de decimales de la moneda (2 para AUD, 0 para JPY).
func (f *Formatter) Scale() int32 { return f.scale }

// Format devuelve p.ej. "AUD 1,234.50" para 123450 centavos.
func (f *Formatter) Format(minor int64) string {
	major := float64(minor) / math.Pow10(int(f.scale))
	return f.printer.Sprintf(f.pattern, f.unit.String(), major)
}

// ToDecimal pasa de unidades menores a unidades mayores exactas.
func (f *Formatter) ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -f.scale)
}

// FromDecimal pasa de unidades mayores a menores; falla si el valor tiene más
// decimales de los que admite la moneda.
func (f *Formatter) FromDecimal(major decimal.Decimal) (int64, error) {
	minor := major.Shift(f.scale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("monto %s con más de %d decimales", major.String(), f.scale)
	}
	if minor.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64/2)) {
		return 0, fmt.Errorf("monto %s fuera de rango", major.String())
	}
	return minor.IntPart(), nil
}
