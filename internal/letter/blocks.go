package letter

// Block is one element of the composed letter. Renderers type-switch
// on the two concrete kinds, Paragraph and Table.
type Block interface{ block() }

// ParKind distinguishes paragraphs that render with a dedicated style.
type ParKind int

const (
	ParBody ParKind = iota
	ParAddress
	ParSubject
	ParTitle
)

// Paragraph is a single line of text. Multi-line content is expressed
// as consecutive blocks; an empty Text is a vertical spacer.
type Paragraph struct {
	Text string
	Kind ParKind
	Bold bool
}

// Row is one line of a letter table. Amount arrives preformatted, the
// renderer only decides placement.
type Row struct {
	Label  string
	Amount string
	Bold   bool
}

// Table is a two-column block: labels left, amounts right.
type Table struct {
	Header bool // render the column header row
	Rows   []Row
}

func (Paragraph) block() {}
func (Table) block()     {}

// Column headers, shown only on tables that carry a visible title.
const (
	HeaderLabel  = "Item"
	HeaderAmount = "Importo"
)
