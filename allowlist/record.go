// Package allowlist turns a raw, comma-delimited list of eligible voter
// addresses into a self-verified Merkle commitment: one root plus a
// membership proof per surviving address. The pipeline is a pure batch
// computation; it returns a structured Report and leaves printing and
// serialization to the caller.
package allowlist

import "fmt"

// Record is one candidate line of input: a textual identifier plus any
// trailing comma-separated fields, which are carried through untouched.
type Record struct {
	// Line is the 1-based line number in the original input.
	Line int

	// Identifier is the first comma-separated field, trimmed.
	Identifier string

	// Metadata holds the remaining fields, trimmed, in input order.
	Metadata []string
}

// Rejection reasons for individual records. These never abort a build.
const (
	ReasonEmpty     = "empty"
	ReasonInvalid   = "invalid format"
	ReasonDuplicate = "duplicate"
)

// Rejection records why one input line was excluded from the commitment.
type Rejection struct {
	Line   int
	Value  string
	Reason string
}

// String renders the rejection for summary output.
func (r Rejection) String() string {
	return fmt.Sprintf("line %d: %s (%s)", r.Line, r.Reason, r.Value)
}
