package core

import (
	"fmt"
	"slices"

	"valorizza/internal/registry"
)

type groupKey struct {
	table registry.TableID
	label string
}

// Aggregate sums classified entries per client label, suppresses rows
// that net to zero and assembles the tables of the letter.
//
// Rows inside a table are ordered by rank, lowest first, with the raw
// label as tiebreak; unknown labels sort after every configured one.
// Tables follow the declaration order of the classification table, and
// a table with no surviving rows is omitted altogether. The grand
// total sums the tables that the classification marks as counting.
func Aggregate(reg *registry.Registry, entries []Entry) Summary {
	sums := make(map[groupKey]Money)
	bold := make(map[groupKey]bool)
	unmapped := make(map[groupKey]bool)
	for _, e := range entries {
		k := groupKey{table: e.Table, label: e.Label}
		sums[k] = sums[k].Add(e.Amount)
		if e.Bold {
			bold[k] = true
		}
		if e.Unmapped {
			unmapped[k] = true
		}
	}

	byTable := make(map[registry.TableID][]Row)
	var unmappedLabels []string
	for k, amount := range sums {
		// Zero nets disappear after aggregation, not before: opposite
		// movements must be allowed to cancel out first.
		if amount.IsZero() {
			continue
		}
		row := Row{
			Label:    k.label,
			Amount:   amount,
			Bold:     bold[k] || reg.LabelBold(k.label),
			Unmapped: unmapped[k],
		}
		byTable[k.table] = append(byTable[k.table], row)
		if row.Unmapped {
			unmappedLabels = append(unmappedLabels, k.label)
		}
	}
	slices.Sort(unmappedLabels)

	summary := Summary{
		GrandTotalLabel: reg.GrandTotalLabel(),
		SourceRows:      len(entries),
		UnmappedLabels:  unmappedLabels,
	}
	for _, spec := range reg.Tables() {
		rows := byTable[spec.ID]
		if len(rows) == 0 {
			continue
		}
		slices.SortFunc(rows, func(a, b Row) int {
			ra, rb := reg.LabelRank(a.Label), reg.LabelRank(b.Label)
			if ra != rb {
				return ra - rb
			}
			if a.Label < b.Label {
				return -1
			}
			if a.Label > b.Label {
				return 1
			}
			return 0
		})

		var total Money
		for _, r := range rows {
			total = total.Add(r.Amount)
		}
		summary.Tables = append(summary.Tables, TableResult{
			ID:           spec.ID,
			Title:        spec.Title,
			Rows:         rows,
			Total:        total,
			TotalRow:     spec.TotalRow,
			TotalLabel:   spec.TotalLabel,
			InGrandTotal: spec.InGrandTotal,
		})
		if spec.InGrandTotal {
			summary.GrandTotal = summary.GrandTotal.Add(total)
		}
	}
	return summary
}

// Run classifies and aggregates in one step.
func Run(reg *registry.Registry, rows []LedgerRow) Summary {
	return Aggregate(reg, Classify(reg, rows))
}

// Check verifies the internal arithmetic of the summary: every table
// total must equal the sum of its rows and the grand total must equal
// the sum of the table totals. A mismatch is a defect in the pipeline,
// never a data problem, so callers should fail loudly.
func (s Summary) Check() error {
	var grand Money
	for _, t := range s.Tables {
		var sum Money
		for _, r := range t.Rows {
			sum = sum.Add(r.Amount)
		}
		if !sum.Equal(t.Total) {
			return fmt.Errorf("table %s total %s does not match row sum %s", t.ID, t.Total, sum)
		}
		if t.InGrandTotal {
			grand = grand.Add(t.Total)
		}
	}
	if !grand.Equal(s.GrandTotal) {
		return fmt.Errorf("grand total %s does not match table sum %s", s.GrandTotal, grand)
	}
	return nil
}
