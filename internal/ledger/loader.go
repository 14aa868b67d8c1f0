// Package ledger legge gli estratti movimenti caricati dall'utente
// (xlsx o csv) e li normalizza in righe pronte per la classificazione.
// Il contenuto del file non viene mai persistito.
package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"valorizza/internal/core"
)

// Canonical column names of a ledger extract.
const (
	ColDate     = "Item date"
	ColCategory = "Item name"
	ColValue    = "Item value"
)

// Portals export the same data under different headers.
var columnAliases = map[string]string{
	"EntryDate": ColDate,
	"ValueDate": ColDate,
	"EntryType": ColCategory,
	"Amount":    ColValue,
}

var (
	// ErrUnsupportedFormat rejects extensions the parser cannot read.
	// Legacy .xls workbooks are rejected on purpose: callers should
	// re-export as .xlsx or .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when no header row can be found.
	ErrEmptyFile = errors.New("empty file")
)

// MissingColumnsError reports which canonical columns the extract lacks
// after alias resolution.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// Result is a parsed extract plus the counters the UI warns about.
type Result struct {
	Rows    []core.LedgerRow
	Total   int // data rows seen, excluding the header
	Skipped int // rows dropped for an unparseable amount or empty category
}

// Parse reads an uploaded extract. The format is decided by the file
// extension: .xlsx/.xlsm go through the workbook reader, .csv through
// the csv reader. Rows whose amount cannot be interpreted are counted
// and skipped, never guessed.
func Parse(r io.Reader, filename string) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading upload: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		raw, err := workbookRows(data)
		if err != nil {
			return Result{}, err
		}
		return fromRows(raw)
	case ".csv":
		raw, err := csvRows(data)
		if err != nil {
			return Result{}, err
		}
		return fromRows(raw)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func workbookRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func csvRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // BOM

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	// Italian exports often use semicolons, with the comma left to the
	// decimals. Sniff the header line.
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		if first := data[:i]; bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
			r.Comma = ';'
		}
	} else if bytes.Count(data, []byte{';'}) > bytes.Count(data, []byte{','}) {
		r.Comma = ';'
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

// fromRows locates the header, resolves aliases and converts data rows.
func fromRows(raw [][]string) (Result, error) {
	header := -1
	for i, row := range raw {
		if !rowEmpty(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return Result{}, ErrEmptyFile
	}

	idx := make(map[string]int, 3)
	for i, name := range raw[header] {
		name = strings.TrimSpace(name)
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		switch name {
		case ColDate, ColCategory, ColValue:
			if _, taken := idx[name]; !taken {
				idx[name] = i
			}
		}
	}
	var missing []string
	for _, name := range []string{ColDate, ColCategory, ColValue} {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Result{}, &MissingColumnsError{Missing: missing}
	}

	var res Result
	for _, row := range raw[header+1:] {
		if rowEmpty(row) {
			continue
		}
		res.Total++

		category := strings.TrimSpace(cell(row, idx[ColCategory]))
		amount, err := core.ParseAmount(cell(row, idx[ColValue]))
		if category == "" || err != nil {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, core.LedgerRow{
			Date:        strings.TrimSpace(cell(row, idx[ColDate])),
			RawCategory: category,
			Amount:      amount,
		})
	}
	return res, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
