// Package edit implements the content mutation engine: precise literal
// replacements applied to a single document by line, by occurrence
// ordinal, by line range, or everywhere. Requests are validated before
// any scanning happens, and every outcome is reported as a status on the
// result rather than an error, so callers can tell a malformed request
// apart from a request that simply found nothing to change.
package edit

import "fmt"

// LocatorKind selects how a request picks its target.
type LocatorKind int

const (
	// KindAll replaces every occurrence in the document.
	KindAll LocatorKind = iota
	// KindLine replaces every occurrence within one line.
	KindLine
	// KindNth replaces exactly the occurrence at a global ordinal.
	KindNth
	// KindRange replaces every occurrence within an inclusive line range.
	KindRange
)

func (k LocatorKind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindLine:
		return "line"
	case KindNth:
		return "nth"
	case KindRange:
		return "range"
	default:
		return fmt.Sprintf("locator(%d)", int(k))
	}
}

// Locator identifies where in a document a request applies.
type Locator struct {
	Kind  LocatorKind
	Line  int // KindLine
	Nth   int // KindNth
	Start int // KindRange, inclusive
	End   int // KindRange, inclusive
}

// All targets every occurrence in the document.
func All() Locator {
	return Locator{Kind: KindAll}
}

// AtLine targets the 1-based line n.
func AtLine(n int) Locator {
	return Locator{Kind: KindLine, Line: n}
}

// NthOccurrence targets the single occurrence at 1-based global ordinal n.
func NthOccurrence(n int) Locator {
	return Locator{Kind: KindNth, Nth: n}
}

// LineRange targets the inclusive 1-based range [start, end].
func LineRange(start, end int) Locator {
	return Locator{Kind: KindRange, Start: start, End: end}
}

// Request describes one edit: replace occurrences of Pattern with
// Replacement at the location the Locator selects. PreviewOnly requests
// are computed identically but callers must not write the result back.
type Request struct {
	Pattern     string  `json:"pattern" yaml:"pattern"`
	Replacement string  `json:"replacement" yaml:"replacement"`
	Locator     Locator `json:"-" yaml:"-"`
	PreviewOnly bool    `json:"preview,omitempty" yaml:"preview,omitempty"`
}
