package letter

import "strings"

// Markdown renders the block sequence as GitHub-flavored markdown.
// The web preview pipes it through the HTML converter; the command
// line writes it out as is. Tables always show their column header
// here, the print renderer is the one that may hide it.
func Markdown(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch v := blk.(type) {
		case Paragraph:
			if v.Text == "" {
				continue
			}
			switch {
			case v.Kind == ParSubject:
				b.WriteString("## " + v.Text)
			case v.Kind == ParTitle:
				b.WriteString("### " + v.Text)
			case v.Bold:
				b.WriteString("**" + v.Text + "**")
			default:
				b.WriteString(v.Text)
			}
			b.WriteString("\n\n")
		case Table:
			b.WriteString("| " + HeaderLabel + " | " + HeaderAmount + " |\n")
			b.WriteString("| --- | ---: |\n")
			for _, row := range v.Rows {
				label, amount := mdCell(row.Label), mdCell(row.Amount)
				if row.Bold {
					label, amount = "**"+label+"**", "**"+amount+"**"
				}
				b.WriteString("| " + label + " | " + amount + " |\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
