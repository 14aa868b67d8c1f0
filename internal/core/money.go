// Package core implementa la pipeline di valorizzazione: classificazione
// dei movimenti di polizza, aggregazione per etichetta cliente e quadratura
// dei totali. Gli importi sono decimali esatti, mai float.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount segnala una cella importo non interpretabile.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an exact euro amount. The zero value is € 0,00.
type Money struct {
	value decimal.Decimal
}

// MoneyFromDecimal wraps an exact decimal amount.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

// MoneyFromFloat is for tests and literals only; ledger amounts must go
// through ParseAmount to stay exact.
func MoneyFromFloat(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) Neg() Money               { return Money{value: m.value.Neg()} }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) Decimal() decimal.Decimal { return m.value }

// Cents returns the amount in euro cents, rounded half away from zero
// on the third decimal. Formatting and persistence work in cents.
func (m Money) Cents() int64 {
	return m.value.Round(2).Shift(2).IntPart()
}

// String returns the plain decimal form ("-1234.56"), for logs and
// debugging. Client-facing output goes through an AmountFormatter.
func (m Money) String() string {
	return m.value.String()
}

// ParseAmount interprets a raw ledger cell as an euro amount.
//
// Extracts arrive from different portals, so the parser tolerates both
// decimal conventions plus currency decorations:
//
//	ParseAmount("1234.56")    -> 1234.56
//	ParseAmount("1.234,56")   -> 1234.56
//	ParseAmount("1,234.56")   -> 1234.56
//	ParseAmount("-12,34 €")   -> -12.34
//	ParseAmount("EUR 1 000")  -> 1000
//
// When both separators appear, the rightmost one is the decimal mark.
// A lone separator is a decimal mark unless repeated ("1,234,567").
// Separators that form no valid digit grouping ("12..3") fail rather
// than guess.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Strip currency decorations and spacing (including NBSP used as
	// thousands separator by some locales).
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.TrimPrefix(s, "EUR")
	s = strings.TrimSuffix(s, "EUR")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	ok := true
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s, ok = ungroupThousands(s, lastComma, ".")
		} else {
			s, ok = ungroupThousands(s, lastDot, ",")
		}
	case strings.Count(s, ",") > 1:
		s, ok = ungroupThousands(s, len(s), ",")
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s, ok = ungroupThousands(s, len(s), ".")
	}
	if !ok {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: d}, nil
}

// ungroupThousands removes the thousands separator sep from the part of
// s before decimalAt and rewrites the decimal mark there, if any, as a
// dot. The separator must form real groups, one to three digits before
// the first occurrence (after any sign) and exactly three between
// occurrences, so that misplaced marks ("12..3") read as unparseable
// rather than as a different number.
func ungroupThousands(s string, decimalAt int, sep string) (string, bool) {
	frac := ""
	if decimalAt < len(s) {
		frac = "." + s[decimalAt+1:]
	}
	groups := strings.Split(s[:decimalAt], sep)
	for i, g := range groups {
		if i == 0 {
			g = strings.TrimLeft(g, "+-")
			if len(g) < 1 || len(g) > 3 {
				return "", false
			}
			continue
		}
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, "") + frac, true
}
