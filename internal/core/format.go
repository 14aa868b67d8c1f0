package core

import "github.com/Rhymond/go-money"

// AmountFormatter renders amounts for client-facing output. Letters,
// previews and the history list all receive one explicitly, so the
// rendering style is decided at the composition root and nowhere else.
// The zero value is unusable; construct with EuroIT.
type AmountFormatter struct {
	f *money.Formatter
}

// EuroIT formats amounts the way the letters expect them: thousands
// separated by dots, decimal comma, symbol after the number
// ("1.234,56 €", "-12,00 €").
func EuroIT() AmountFormatter {
	return AmountFormatter{f: money.NewFormatter(2, ",", ".", "€", "1 $")}
}

// Format renders the amount, rounded to the cent.
func (a AmountFormatter) Format(m Money) string {
	return a.f.Format(m.Cents())
}
