package core

import "valorizza/internal/registry"

// Classify maps ledger rows to client-facing entries using the
// classification table.
//
// Known categories take label, table, rank and sign policy from their
// rule. Unknown categories pass through with the raw name as label,
// land in the fallback table and get the inverted sign of a generic
// cost; they are flagged so callers can warn before generating.
func Classify(reg *registry.Registry, rows []LedgerRow) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		rule, ok := reg.Resolve(row.RawCategory)
		if !ok {
			entries = append(entries, Entry{
				Label:    row.RawCategory,
				Table:    registry.FallbackTable,
				Rank:     registry.UnmappedRank,
				Amount:   row.Amount.Neg(),
				Unmapped: true,
			})
			continue
		}
		amount := row.Amount
		if rule.Sign == registry.Invert {
			amount = amount.Neg()
		}
		entries = append(entries, Entry{
			Label:  rule.Label,
			Table:  rule.Table,
			Rank:   rule.Rank,
			Amount: amount,
			Bold:   rule.Bold,
		})
	}
	return entries
}
