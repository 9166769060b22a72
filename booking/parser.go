/*
parser.go - Free-text resource specification parser

PURPOSE:
  Users can type the resources they need instead of clicking through
  the catalog. The accepted grammar is deliberately loose because the
  same format appears hand-edited in ledger rows:

    "Oscilloscope:2; Laptop:1"
    "Oscilloscope 2, Laptop"
    "Widget"

RULES:
  - ';', ',' and newline all separate entries
  - an explicit ":<qty>" suffix wins
  - otherwise, a trailing purely numeric token is the quantity
  - otherwise, quantity is 1
  - non-numeric quantity text falls back to 1 rather than failing
  - a later duplicate of a name overwrites the earlier entry (last
    occurrence wins) - unlike cart accumulation, which sums

SEE ALSO:
  - types.go: ResourceSet overwrite vs. accumulate semantics
*/
package booking

import (
	"strconv"
	"strings"
)

// ParseResources parses a free-form resource specification into an
// ordered ResourceSet. Empty or all-separator input yields an empty set;
// the caller decides whether that is acceptable for its step.
func ParseResources(text string) *ResourceSet {
	for _, sep := range []string{",", "\n"} {
		text = strings.ReplaceAll(text, sep, ";")
	}

	set := NewResourceSet()
	for _, chunk := range strings.Split(text, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		var name, qtyText string
		if i := strings.Index(chunk, ":"); i >= 0 {
			name, qtyText = chunk[:i], chunk[i+1:]
		} else if j := strings.LastIndex(chunk, " "); j >= 0 && isDigits(chunk[j+1:]) {
			name, qtyText = chunk[:j], chunk[j+1:]
		} else {
			name, qtyText = chunk, "1"
		}

		qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
		if err != nil {
			qty = 1
		}
		set.Set(name, qty)
	}
	return set
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
