// Package docx trasforma la lettera composta in un documento Word.
package docx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"valorizza/internal/letter"
)

// Usable width on an A4 page with default margins, in twips.
const tableWidth = 9026

// Half-point font sizes.
const (
	sizeSubject = "24" // 12pt
	sizeTitle   = "24"
)

// Write renders the block sequence as a .docx and streams it to w.
// The document is built in memory; nothing touches the filesystem.
func Write(w io.Writer, blocks []letter.Block) (int64, error) {
	doc := docx.New().WithDefaultTheme()
	for _, b := range blocks {
		switch v := b.(type) {
		case letter.Paragraph:
			writeParagraph(doc, v)
		case letter.Table:
			writeTable(doc, v)
		default:
			return 0, fmt.Errorf("unknown block type %T", b)
		}
	}
	return doc.WriteTo(w)
}

// Render is a convenience wrapper around Write for callers that need
// the whole document in memory, e.g. to set Content-Length.
func Render(blocks []letter.Block) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Write(&buf, blocks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeParagraph(doc *docx.Docx, p letter.Paragraph) {
	par := doc.AddParagraph()
	if p.Kind == letter.ParAddress {
		par.Justification("right")
	}
	if p.Text == "" {
		return // spacer
	}
	run := par.AddText(p.Text)
	if p.Bold {
		run.Bold()
	}
	switch p.Kind {
	case letter.ParSubject:
		run.Size(sizeSubject)
	case letter.ParTitle:
		run.Size(sizeTitle)
	}
}

func writeTable(doc *docx.Docx, t letter.Table) {
	rows := len(t.Rows)
	if t.Header {
		rows++
	}
	if rows == 0 {
		return
	}

	tbl := doc.AddTable(rows, 2, tableWidth, nil)
	i := 0
	if t.Header {
		cells := tbl.TableRows[0].TableCells
		cells[0].AddParagraph().AddText(letter.HeaderLabel).Bold()
		p := cells[1].AddParagraph()
		p.Justification("right")
		p.AddText(letter.HeaderAmount).Bold()
		i++
	}
	for _, row := range t.Rows {
		cells := tbl.TableRows[i].TableCells
		left := cells[0].AddParagraph().AddText(row.Label)
		right := cells[1].AddParagraph()
		right.Justification("right")
		amount := right.AddText(row.Amount)
		if row.Bold {
			left.Bold()
			amount.Bold()
		}
		i++
	}
}
