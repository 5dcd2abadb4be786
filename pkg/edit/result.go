package edit

import (
	"fmt"

	"github.com/walteh/presspatch/pkg/doc"
)

// Status classifies the outcome of a mutation.
type Status int

const (
	// StatusApplied means at least the requested replacement happened
	// (or, for an All locator, the request ran to completion).
	StatusApplied Status = iota
	// StatusNoMatch means the request was well-formed but the pattern
	// was absent at the requested location.
	StatusNoMatch
	// StatusInvalidLocation means the line or range lies outside the
	// document.
	StatusInvalidLocation
	// StatusInvalidArgument means the request itself was malformed
	// (empty pattern, non-positive ordinal).
	StatusInvalidArgument
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusNoMatch:
		return "no-match"
	case StatusInvalidLocation:
		return "invalid-location"
	case StatusInvalidArgument:
		return "invalid-argument"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result reports what a mutation did (or would do, for a preview).
// After equals Before whenever Status is not StatusApplied.
type Result struct {
	Status           Status
	ReplacementsMade int
	Before           doc.Document
	After            doc.Document
	// ChangedLines lists the 1-based numbers of lines that differ
	// between Before and After, in order.
	ChangedLines []int
}

// unchanged builds a Result that leaves the document as it was.
func unchanged(d doc.Document, status Status) Result {
	return Result{Status: status, Before: d, After: d}
}
