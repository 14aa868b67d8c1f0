package letter

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSurname(t *testing.T) {
	cases := []struct {
		name string
		out  string
	}{
		{"Mario Rossi", "Rossi"},
		{"Maria Di Salvatore", "Di Salvatore"},
		{"Anna della Valle", "della Valle"},
		{"Jan van Dijk", "van Dijk"},
		{"Hans von Braun", "von Braun"},
		{"Paola De Luca", "De Luca"},
		{"Rossi", "Rossi"},
		{"  Mario   Rossi  ", "Rossi"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Surname(tc.name); got != tc.out {
			t.Fatalf("Surname(%q) = %q, expected %q", tc.name, got, tc.out)
		}
	}
}

func TestParseRecipient(t *testing.T) {
	cases := []struct {
		in  string
		out Recipient
		ok  bool
	}{
		{"uomo", Uomo, true},
		{"Donna", Donna, true},
		{"societa", Societa, true},
		{"società", Societa, true},
		{" UOMO ", Uomo, true},
		{"azienda", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRecipient(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("ParseRecipient(%q) = %v, %v", tc.in, got, err)
			}
		} else if err == nil {
			t.Fatalf("ParseRecipient(%q): expected error", tc.in)
		}
	}
}

func TestSalutations(t *testing.T) {
	cases := []struct {
		r      Recipient
		prefix string
		greet  string
	}{
		{Uomo, "Egr. Sig.", "Egregio Signor"},
		{Donna, "Gent.ma Sig.ra", "Gentilissima Signora"},
		{Societa, "Spett.le", "Spettabile"},
	}
	for _, tc := range cases {
		if got := tc.r.AddressPrefix(); got != tc.prefix {
			t.Fatalf("%v prefix = %q, expected %q", tc.r, got, tc.prefix)
		}
		if got := tc.r.Greeting(); got != tc.greet {
			t.Fatalf("%v greeting = %q, expected %q", tc.r, got, tc.greet)
		}
	}
}

func TestSplitAddress(t *testing.T) {
	cases := []struct {
		in  string
		out []string
	}{
		{"Via Roma 8, 23849 Rogeno, Italia", []string{"Via Roma 8", "23849 Rogeno", "Italia"}},
		{"Via Roma 8\n23849 Rogeno\nItalia", []string{"Via Roma 8", "23849 Rogeno", "Italia"}},
		{"Via Roma 8,\n 23849 Rogeno ", []string{"Via Roma 8", "23849 Rogeno"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := SplitAddress(tc.in)
		if len(got) != len(tc.out) {
			t.Fatalf("SplitAddress(%q) = %v, expected %v", tc.in, got, tc.out)
		}
		for i := range got {
			if got[i] != tc.out[i] {
				t.Fatalf("SplitAddress(%q) = %v, expected %v", tc.in, got, tc.out)
			}
		}
	}
}

func TestContextValidate(t *testing.T) {
	good := Context{
		Name:       "Mario Rossi",
		Address:    "Via Roma 8, Milano",
		FiscalCode: "RSSMRA80A01F205X",
		Contract:   "123456",
		Valuation:  time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	missing := good
	missing.Name = " "
	missing.Contract = ""
	err := missing.Validate()
	if !errors.Is(err, ErrMissingClientData) {
		t.Fatalf("expected ErrMissingClientData, got %v", err)
	}
	if !strings.Contains(err.Error(), "name") || !strings.Contains(err.Error(), "contract number") {
		t.Fatalf("error should list the missing fields, got %q", err)
	}

	midMonth := good
	midMonth.Valuation = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if err := midMonth.Validate(); !errors.Is(err, ErrNotMonthEnd) {
		t.Fatalf("expected ErrNotMonthEnd, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	today := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		contract string
		out      string
	}{
		{"123456", "VAL_123456_250825.docx"},
		{"PL-2024/18", "VAL_PL-202418_250825.docx"},
		{"  7 00 1 ", "VAL_7001_250825.docx"},
	}
	for _, tc := range cases {
		if got := Filename(tc.contract, today); got != tc.out {
			t.Fatalf("Filename(%q) = %q, expected %q", tc.contract, got, tc.out)
		}
	}
}

func TestParseClipboard(t *testing.T) {
	blob := `Some header junk
Contract number: 700123
Policyholder: Maria Di Salvatore
Permanent residence: Via Garibaldi 4, 20121 Milano, Italia
Personal number: DSLMRA75B41F205Z
trailing noise`

	f := ParseClipboard(blob)
	if f.Contract != "700123" {
		t.Fatalf("contract = %q", f.Contract)
	}
	if f.Name != "Maria Di Salvatore" {
		t.Fatalf("name = %q", f.Name)
	}
	if f.Address != "Via Garibaldi 4\n20121 Milano\nItalia" {
		t.Fatalf("address = %q", f.Address)
	}
	if f.FiscalCode != "DSLMRA75B41F205Z" {
		t.Fatalf("fiscal code = %q", f.FiscalCode)
	}
}

func TestParseClipboardPartial(t *testing.T) {
	f := ParseClipboard("contract NUMBER:  42\nnothing else")
	if f.Contract != "42" {
		t.Fatalf("contract = %q, matching must be case-insensitive", f.Contract)
	}
	if f.Name != "" || f.Address != "" || f.FiscalCode != "" {
		t.Fatalf("missing fields must stay empty: %+v", f)
	}
}
