package letter

import (
	"fmt"

	"valorizza/internal/core"
)

// Fixed wording of the letter. The tables in between come from the
// classification artifact; everything here is boilerplate.
const (
	subjectFormat = "Dettaglio costi per il valore della Sua posizione assicurativa polizza n. %s al %s con codice fiscale %s"

	introFormat = "siamo con la presente a trasmetterLe di seguito la tabella riportante il dettaglio dei costi applicati ai fini di calcolo del valore della Sua posizione assicurativa al %s."

	outroReference = "Qualora necessitasse di ulteriori informazioni in merito, La invitiamo gentilmente a riferirsi alla Tabella Costi contenuta nelle Condizioni di Assicurazione."

	outroClosing = "Rimaniamo a disposizione per qualsiasi chiarimento e, ringraziando per la cortese attenzione, Le porgiamo i nostri più cordiali saluti."

	signature = "Il team NOVIS"
)

var footerLines = []string{
	"NOVIS Insurance Company,",
	"NOVIS Versicherungsgesellschaft,",
	"NOVIS Compagnia di Assicurazioni,",
	"NOVIS Poisťovňa a.s.",
}

// Compose assembles the full letter as a block sequence: address
// block, date line, subject, greeting and intro, one table per
// aggregated table with its subtotal, the grand total, then the fixed
// closing. Amount rendering comes from the caller, so the letter never
// decides locale details on its own. It never mutates its inputs and
// performs no I/O.
func Compose(ctx Context, s core.Summary, amounts core.AmountFormatter) []Block {
	city := ctx.City
	if city == "" {
		city = DefaultCity
	}

	var blocks []Block
	par := func(p Paragraph) { blocks = append(blocks, p) }
	spacer := func() { par(Paragraph{}) }

	// Address block, positioned for a windowed envelope.
	par(Paragraph{Text: ctx.Recipient.AddressPrefix() + " " + ctx.Name, Kind: ParAddress})
	for _, line := range SplitAddress(ctx.Address) {
		par(Paragraph{Text: line, Kind: ParAddress})
	}

	par(Paragraph{Text: city + ", " + FormatDate(ctx.Today)})
	spacer()

	par(Paragraph{
		Text: fmt.Sprintf(subjectFormat, ctx.Contract, FormatDate(ctx.Valuation), ctx.FiscalCode),
		Kind: ParSubject,
		Bold: true,
	})
	spacer()

	greetName := ctx.Name
	if ctx.Recipient != Societa {
		greetName = Surname(ctx.Name)
	}
	par(Paragraph{Text: ctx.Recipient.Greeting() + " " + greetName + ","})
	par(Paragraph{Text: fmt.Sprintf(introFormat, FormatDate(ctx.Valuation))})
	spacer()

	for _, tbl := range s.Tables {
		if tbl.Title != "" {
			par(Paragraph{Text: tbl.Title, Kind: ParTitle, Bold: true})
		}
		t := Table{Header: tbl.Title != ""}
		for _, row := range tbl.Rows {
			t.Rows = append(t.Rows, Row{
				Label:  row.Label,
				Amount: amounts.Format(row.Amount),
				Bold:   row.Bold,
			})
		}
		if tbl.TotalRow {
			t.Rows = append(t.Rows, Row{
				Label:  tbl.TotalLabel,
				Amount: amounts.Format(tbl.Total),
				Bold:   true,
			})
		}
		blocks = append(blocks, t)
		spacer()
	}

	blocks = append(blocks, Table{Rows: []Row{{
		Label:  s.GrandTotalLabel,
		Amount: amounts.Format(s.GrandTotal),
		Bold:   true,
	}}})
	spacer()

	par(Paragraph{Text: outroReference})
	spacer()
	par(Paragraph{Text: outroClosing})
	spacer()
	par(Paragraph{Text: signature})
	spacer()
	for _, line := range footerLines {
		par(Paragraph{Text: line})
	}
	return blocks
}
