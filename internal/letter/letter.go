// Package letter compone la lettera di valorizzazione: dati cliente,
// oggetto, tabelle costi e chiusura, come sequenza di blocchi neutri
// che i renderer (docx, markdown) trasformano nel formato finale.
package letter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recipient selects the salutation set of the letter.
type Recipient int

const (
	Uomo Recipient = iota
	Donna
	Societa
)

// ParseRecipient accepts the form values of the recipient selector.
func ParseRecipient(s string) (Recipient, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uomo":
		return Uomo, nil
	case "donna":
		return Donna, nil
	case "societa", "società":
		return Societa, nil
	default:
		return 0, fmt.Errorf("unknown recipient type %q", s)
	}
}

func (r Recipient) String() string {
	switch r {
	case Donna:
		return "donna"
	case Societa:
		return "società"
	default:
		return "uomo"
	}
}

// AddressPrefix is the honorific that opens the address block.
func (r Recipient) AddressPrefix() string {
	switch r {
	case Donna:
		return "Gent.ma Sig.ra"
	case Societa:
		return "Spett.le"
	default:
		return "Egr. Sig."
	}
}

// Greeting opens the body of the letter.
func (r Recipient) Greeting() string {
	switch r {
	case Donna:
		return "Gentilissima Signora"
	case Societa:
		return "Spettabile"
	default:
		return "Egregio Signor"
	}
}

// DefaultCity is the place preprinted on the date line.
const DefaultCity = "Bratislava"

// Context carries everything the composer needs besides the amounts.
type Context struct {
	Name       string
	Address    string // free text; commas or newlines separate the lines
	FiscalCode string
	Contract   string
	Recipient  Recipient
	City       string
	Valuation  time.Time // month-end the amounts refer to
	Today      time.Time // date line of the letter
}

var (
	ErrMissingClientData = errors.New("missing client data")
	ErrNotMonthEnd       = errors.New("valuation date is not a month end")
)

// Validate checks that the letter can be generated: every client field
// filled in and the valuation date on a month end.
func (c Context) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(c.FiscalCode) == "" {
		missing = append(missing, "fiscal code")
	}
	if strings.TrimSpace(c.Contract) == "" {
		missing = append(missing, "contract number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingClientData, strings.Join(missing, ", "))
	}
	if c.Valuation.IsZero() || !IsMonthEnd(c.Valuation) {
		return ErrNotMonthEnd
	}
	return nil
}

// nobiliary and locative particles that belong to the surname
var particles = map[string]bool{
	"di": true, "de": true, "del": true, "della": true, "d'": true,
	"da": true, "van": true, "von": true, "la": true, "le": true,
}

// Surname extracts the surname for the greeting: the last token of the
// name, or the last two when the second-to-last is a particle, so
// "Maria Di Salvatore" greets as "Di Salvatore".
func Surname(fullName string) string {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) >= 2 && particles[strings.ToLower(tokens[len(tokens)-2])] {
		return strings.Join(tokens[len(tokens)-2:], " ")
	}
	return tokens[len(tokens)-1]
}

// SplitAddress turns "Via Roma 8, 23849 Rogeno, Italia" into its
// lines. Commas and newlines both separate; blanks are dropped.
func SplitAddress(addr string) []string {
	var lines []string
	for _, part := range strings.FieldsFunc(addr, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// Filename names the download: VAL_<contract>_<ddmmyy>.docx, with the
// contract reduced to characters safe for a Content-Disposition header.
func Filename(contract string, today time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return -1
		}
	}, contract)
	return fmt.Sprintf("VAL_%s_%s.docx", safe, today.Format("020106"))
}
