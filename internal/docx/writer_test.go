package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"valorizza/internal/core"
	"valorizza/internal/letter"
	"valorizza/internal/registry"
)

func renderSample(t *testing.T) string {
	t.Helper()

	ctx := letter.Context{
		Name:       "Maria Di Salvatore",
		Address:    "Via Garibaldi 4, 20121 Milano, Italia",
		FiscalCode: "DSLMRA75B41F205Z",
		Contract:   "700123",
		Recipient:  letter.Donna,
		Valuation:  time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Today:      time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
	}
	summary := core.Summary{
		Tables: []core.TableResult{{
			ID: registry.T1,
			Rows: []core.Row{
				{Label: "Costi di emissione e gestione", Amount: core.MoneyFromFloat(-100)},
				{Label: "Pagamenti dei Premi identificati", Amount: core.MoneyFromFloat(500)},
			},
			Total:        core.MoneyFromFloat(400),
			TotalRow:     true,
			TotalLabel:   "Somma totale (escluso Bonus Fedeltà NOVIS e Special Bonus)",
			InGrandTotal: true,
		}},
		GrandTotal:      core.MoneyFromFloat(400),
		GrandTotalLabel: "Valore della Sua posizione assicurativa (incluso Bonus Fedeltà NOVIS e NOVIS Special Bonus)",
	}

	var buf bytes.Buffer
	n, err := Write(&buf, letter.Compose(ctx, summary, core.EuroIT()))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n == 0 || buf.Len() == 0 {
		t.Fatal("expected a non-empty document")
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatal("word/document.xml not found in archive")
	return ""
}

func TestWriteDocumentContent(t *testing.T) {
	xml := renderSample(t)

	for _, want := range []string{
		"Gent.ma Sig.ra Maria Di Salvatore",
		"Bratislava, 25/08/2025",
		"polizza n. 700123 al 30/06/2025 con codice fiscale DSLMRA75B41F205Z",
		"Gentilissima Signora Di Salvatore,",
		"Costi di emissione e gestione",
		"-100,00 €",
		"Somma totale (escluso Bonus Fedeltà NOVIS e Special Bonus)",
		"Valore della Sua posizione assicurativa (incluso Bonus Fedeltà NOVIS e NOVIS Special Bonus)",
		"Il team NOVIS",
		"NOVIS Poisťovňa a.s.",
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("document.xml missing %q", want)
		}
	}
}

func TestWriteDocumentStructure(t *testing.T) {
	xml := renderSample(t)

	if !strings.Contains(xml, "<w:tbl>") {
		t.Fatal("expected at least one table")
	}
	if !strings.Contains(xml, "<w:b") {
		t.Fatal("expected bold runs")
	}
	if !strings.Contains(xml, `w:val="right"`) {
		t.Fatal("expected right-aligned content")
	}
}
