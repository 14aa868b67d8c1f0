package core

import "valorizza/internal/registry"

type (
	// LedgerRow is one movement as it appears in the uploaded extract,
	// after column normalization and amount parsing. The date stays a
	// raw string: it is never interpreted, only carried through.
	LedgerRow struct {
		Date        string
		RawCategory string
		Amount      Money
	}

	// Entry is a classified movement: client label, destination table
	// and the amount already signed for presentation.
	Entry struct {
		Label    string
		Table    registry.TableID
		Rank     int
		Amount   Money
		Bold     bool
		Unmapped bool
	}

	// Row is one line of a client-facing table after aggregation.
	Row struct {
		Label    string
		Amount   Money
		Bold     bool
		Unmapped bool
	}

	// TableResult is a rendered-ready table: ordered rows plus the
	// optional total row from the table spec.
	TableResult struct {
		ID           registry.TableID
		Title        string
		Rows         []Row
		Total        Money
		TotalRow     bool
		TotalLabel   string
		InGrandTotal bool
	}

	// Summary is the complete outcome of a valuation run.
	Summary struct {
		Tables          []TableResult
		GrandTotal      Money
		GrandTotalLabel string
		SourceRows      int
		UnmappedLabels  []string
	}
)

// HasUnmapped reports whether any row of the run carries a category
// missing from the classification table.
func (s Summary) HasUnmapped() bool {
	return len(s.UnmappedLabels) > 0
}

// Table returns the aggregated table with the given id, if present.
// Tables that end up empty after zero-net suppression are absent.
func (s Summary) Table(id registry.TableID) (TableResult, bool) {
	for _, t := range s.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return TableResult{}, false
}
