package letter

import "time"

// DateLayout is the Italian day-first format used everywhere in the
// letter: subject, date line, valuation selector.
const DateLayout = "02/01/2006"

// FormatDate renders a date as gg/mm/aaaa.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// PrevMonthEnd returns the last calendar day of the month before d.
func PrevMonthEnd(d time.Time) time.Time {
	firstOfMonth := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	return firstOfMonth.AddDate(0, 0, -1)
}

// IsMonthEnd reports whether d is the last day of its month.
func IsMonthEnd(d time.Time) bool {
	return d.AddDate(0, 0, 1).Day() == 1
}

// MonthEnds lists the n month ends before today, most recent first.
// The valuation selector offers exactly these choices.
func MonthEnds(today time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := PrevMonthEnd(today)
	for i := 0; i < n; i++ {
		out = append(out, d)
		d = PrevMonthEnd(d)
	}
	return out
}
