package series

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatMillions renders an amount in thousands of BRL as millions, pt-BR style ("R$ 1.234,56 mi")
func FormatMillions(thousands float64) string {
	return brPrinter.Sprintf("R$ %.2f mi", thousands/1000)
}

// FormatDecimal renders v with one decimal place in pt-BR notation
func FormatDecimal(v float64) string {
	return brPrinter.Sprintf("%.1f", v)
}
