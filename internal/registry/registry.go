// Package registry carries la tabella di classificazione: la mappatura
// dalle voci grezze dell'estratto polizza alle etichette cliente, con
// tabella di destinazione, ordinamento e politica del segno.
//
// La tabella è un artefatto YAML versionato incorporato nel binario;
// aggiornarla significa modificare categories.yaml e rilasciare.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultYAML []byte

// TableID identifies one of the client-facing tables of the letter.
type TableID string

const (
	T1 TableID = "T1" // costi e movimenti generali
	T2 TableID = "T2" // Bonus Fedeltà
	T3 TableID = "T3" // Special Bonus
)

// FallbackTable receives entries whose raw category is unknown.
const FallbackTable = T1

// UnmappedRank sorts unknown labels after every configured one.
const UnmappedRank = 999

// SignPolicy decides how a ledger amount enters the client tables.
type SignPolicy int

const (
	// Invert flips the sign: the source books costs as positive
	// deductions, the letter shows them as negative amounts.
	Invert SignPolicy = iota
	// Preserve keeps the booked sign (premiums, returns, bonuses).
	Preserve
)

func (s SignPolicy) String() string {
	if s == Preserve {
		return "preserve"
	}
	return "invert"
}

// Rule maps one raw ledger category to its client-facing presentation.
type Rule struct {
	Match string
	Label string
	Table TableID
	Rank  int
	Sign  SignPolicy
	Bold  bool
}

// Table describes one client-facing table of the letter.
type Table struct {
	ID           TableID
	Title        string
	TotalRow     bool
	TotalLabel   string
	InGrandTotal bool
}

// Registry is an immutable, validated classification table. Lookups are
// safe for concurrent use.
type Registry struct {
	version         int
	grandTotalLabel string
	tables          []Table
	byID            map[TableID]Table
	rules           map[string]Rule
	labelRank       map[string]int
	labelBold       map[string]bool
}

type yamlFile struct {
	Version         int            `yaml:"version"`
	GrandTotalLabel string         `yaml:"grand_total_label"`
	Tables          []yamlTable    `yaml:"tables"`
	Categories      []yamlCategory `yaml:"categories"`
}

type yamlTable struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	TotalRow     bool   `yaml:"total_row"`
	TotalLabel   string `yaml:"total_label"`
	InGrandTotal bool   `yaml:"in_grand_total"`
}

type yamlCategory struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
	Table string `yaml:"table"`
	Rank  int    `yaml:"rank"`
	Sign  string `yaml:"sign"`
	Bold  bool   `yaml:"bold"`
}

// Default loads the classification table embedded in the binary.
func Default() (*Registry, error) {
	return Parse(defaultYAML)
}

// Parse decodes and validates a classification table. The artifact must
// declare a version, a non-empty grand-total label, the tables it
// references and at least one category; duplicate match keys and
// references to undeclared tables are rejected.
func Parse(data []byte) (*Registry, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding classification table: %w", err)
	}

	var errors []string

	if f.Version < 1 {
		errors = append(errors, fmt.Sprintf("invalid version %d: must be at least 1", f.Version))
	}
	if strings.TrimSpace(f.GrandTotalLabel) == "" {
		errors = append(errors, "grand_total_label cannot be empty")
	}
	if len(f.Tables) == 0 {
		errors = append(errors, "at least one table must be declared")
	}
	if len(f.Categories) == 0 {
		errors = append(errors, "at least one category must be declared")
	}

	byID := make(map[TableID]Table, len(f.Tables))
	tables := make([]Table, 0, len(f.Tables))
	for _, t := range f.Tables {
		id := TableID(t.ID)
		switch id {
		case T1, T2, T3:
		default:
			errors = append(errors, fmt.Sprintf("unknown table id '%s': must be one of [%s %s %s]", t.ID, T1, T2, T3))
			continue
		}
		if _, dup := byID[id]; dup {
			errors = append(errors, fmt.Sprintf("duplicate table id '%s'", t.ID))
			continue
		}
		if t.TotalRow && strings.TrimSpace(t.TotalLabel) == "" {
			errors = append(errors, fmt.Sprintf("table '%s' declares a total row without a total_label", t.ID))
		}
		tbl := Table{
			ID:           id,
			Title:        t.Title,
			TotalRow:     t.TotalRow,
			TotalLabel:   t.TotalLabel,
			InGrandTotal: t.InGrandTotal,
		}
		byID[id] = tbl
		tables = append(tables, tbl)
	}
	if _, ok := byID[FallbackTable]; !ok && len(f.Tables) > 0 {
		errors = append(errors, fmt.Sprintf("fallback table '%s' must be declared", FallbackTable))
	}

	rules := make(map[string]Rule, len(f.Categories))
	labelRank := make(map[string]int)
	labelBold := make(map[string]bool)
	for _, c := range f.Categories {
		if strings.TrimSpace(c.Match) == "" {
			errors = append(errors, "category with empty match key")
			continue
		}
		if strings.TrimSpace(c.Label) == "" {
			errors = append(errors, fmt.Sprintf("category '%s' has an empty label", c.Match))
			continue
		}
		if _, dup := rules[c.Match]; dup {
			errors = append(errors, fmt.Sprintf("duplicate category match '%s'", c.Match))
			continue
		}
		if _, ok := byID[TableID(c.Table)]; !ok {
			errors = append(errors, fmt.Sprintf("category '%s' references undeclared table '%s'", c.Match, c.Table))
			continue
		}
		if c.Rank < 1 || c.Rank >= UnmappedRank {
			errors = append(errors, fmt.Sprintf("category '%s' has invalid rank %d: must be between 1 and %d", c.Match, c.Rank, UnmappedRank-1))
			continue
		}
		sign := Invert
		switch c.Sign {
		case "", "invert":
		case "preserve":
			sign = Preserve
		default:
			errors = append(errors, fmt.Sprintf("category '%s' has invalid sign '%s': must be 'preserve' or 'invert'", c.Match, c.Sign))
			continue
		}

		rule := Rule{
			Match: c.Match,
			Label: c.Label,
			Table: TableID(c.Table),
			Rank:  c.Rank,
			Sign:  sign,
			Bold:  c.Bold,
		}
		rules[rule.Match] = rule

		// Rules sharing a label merge into one client row: the lowest
		// rank wins, bold sticks if any rule asks for it.
		if r, ok := labelRank[rule.Label]; !ok || rule.Rank < r {
			labelRank[rule.Label] = rule.Rank
		}
		if rule.Bold {
			labelBold[rule.Label] = true
		}
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("classification table validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return &Registry{
		version:         f.Version,
		grandTotalLabel: f.GrandTotalLabel,
		tables:          tables,
		byID:            byID,
		rules:           rules,
		labelRank:       labelRank,
		labelBold:       labelBold,
	}, nil
}

// Version reports the artifact version, for logging and storage.
func (r *Registry) Version() int { return r.version }

// GrandTotalLabel is the caption of the closing grand-total row.
func (r *Registry) GrandTotalLabel() string { return r.grandTotalLabel }

// Tables returns the client-facing tables in declaration order.
func (r *Registry) Tables() []Table {
	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Table looks up a table by id.
func (r *Registry) Table(id TableID) (Table, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Resolve looks up the rule for a raw ledger category. The match is
// exact and case-sensitive: source nomenclature is reproduced verbatim
// in the artifact, typos included. ok is false for unknown categories.
func (r *Registry) Resolve(rawCategory string) (Rule, bool) {
	rule, ok := r.rules[rawCategory]
	return rule, ok
}

// LabelRank returns the sort rank of a client label, or UnmappedRank
// when the label does not appear in the table.
func (r *Registry) LabelRank(label string) int {
	if rank, ok := r.labelRank[label]; ok {
		return rank
	}
	return UnmappedRank
}

// LabelBold reports whether a client label renders in bold.
func (r *Registry) LabelBold(label string) bool {
	return r.labelBold[label]
}

// Rules returns every configured rule, keyed by match. The map is a
// copy; callers may range freely.
func (r *Registry) Rules() map[string]Rule {
	out := make(map[string]Rule, len(r.rules))
	for k, v := range r.rules {
		out[k] = v
	}
	return out
}
