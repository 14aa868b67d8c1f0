package letter

import (
	"regexp"
	"strings"
)

// ClientFields is the outcome of a clipboard import. Fields that the
// pasted block does not contain stay empty; the user completes them.
type ClientFields struct {
	Contract   string
	Name       string
	Address    string
	FiscalCode string
}

var (
	clipContract = regexp.MustCompile(`(?i)Contract number:[ \t]*(.+)`)
	clipName     = regexp.MustCompile(`(?i)Policyholder:[ \t]*(.+)`)
	clipAddress  = regexp.MustCompile(`(?i)Permanent residence:[ \t]*(.+)`)
	clipFiscal   = regexp.MustCompile(`(?i)Personal number:[ \t]*(.+)`)
)

// ParseClipboard extracts the client fields from a block pasted out of
// the policy system. Matching is line-oriented and case-insensitive;
// the address is re-split one line per component.
func ParseClipboard(blob string) ClientFields {
	find := func(re *regexp.Regexp) string {
		if m := re.FindStringSubmatch(blob); m != nil {
			return strings.TrimSpace(m[1])
		}
		return ""
	}
	f := ClientFields{
		Contract:   find(clipContract),
		Name:       find(clipName),
		Address:    find(clipAddress),
		FiscalCode: find(clipFiscal),
	}
	if f.Address != "" {
		f.Address = strings.Join(SplitAddress(f.Address), "\n")
	}
	return f
}
