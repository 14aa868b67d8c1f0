package letter

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPrevMonthEnd(t *testing.T) {
	cases := []struct {
		in  time.Time
		out time.Time
	}{
		{day(2025, time.August, 25), day(2025, time.July, 31)},
		{day(2025, time.March, 1), day(2025, time.February, 28)},
		{day(2024, time.March, 31), day(2024, time.February, 29)}, // leap year
		{day(2025, time.January, 10), day(2024, time.December, 31)},
	}
	for _, tc := range cases {
		if got := PrevMonthEnd(tc.in); !got.Equal(tc.out) {
			t.Fatalf("PrevMonthEnd(%s) = %s, expected %s", tc.in, got, tc.out)
		}
	}
}

func TestIsMonthEnd(t *testing.T) {
	cases := []struct {
		in time.Time
		ok bool
	}{
		{day(2025, time.June, 30), true},
		{day(2025, time.February, 28), true},
		{day(2024, time.February, 29), true},
		{day(2024, time.February, 28), false},
		{day(2025, time.June, 15), false},
	}
	for _, tc := range cases {
		if got := IsMonthEnd(tc.in); got != tc.ok {
			t.Fatalf("IsMonthEnd(%s) = %v, expected %v", tc.in, got, tc.ok)
		}
	}
}

func TestMonthEnds(t *testing.T) {
	got := MonthEnds(day(2025, time.August, 25), 12)
	if len(got) != 12 {
		t.Fatalf("expected 12 month ends, got %d", len(got))
	}
	if !got[0].Equal(day(2025, time.July, 31)) {
		t.Fatalf("first option must be the previous month end, got %s", got[0])
	}
	if !got[11].Equal(day(2024, time.August, 31)) {
		t.Fatalf("last option = %s, expected 2024-08-31", got[11])
	}
	for _, d := range got {
		if !IsMonthEnd(d) {
			t.Fatalf("%s is not a month end", d)
		}
	}
}
