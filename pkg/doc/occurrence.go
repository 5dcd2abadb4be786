package doc

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Occurrence is one located match of a literal pattern. Line, Column and
// Ordinal are all 1-based; Ordinal counts matches across the whole
// document top-to-bottom, left-to-right.
type Occurrence struct {
	Line    int
	Column  int
	Ordinal int
}

// ErrEmptyPattern is returned when a scan is requested for the empty
// pattern, which would match everywhere and nowhere.
var ErrEmptyPattern = errors.New("pattern must not be empty")

// Scanner walks the occurrences of a literal pattern through a document
// in order. It is finite and restartable via Reset. Matching is plain
// substring matching; successive matches within a line do not overlap.
type Scanner struct {
	d       Document
	pattern string
	line    int // 0-based index of the line being scanned
	col     int // 0-based byte offset within that line
	ordinal int
}

// NewScanner returns a scanner positioned before the first occurrence.
func NewScanner(d Document, pattern string) (*Scanner, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	return &Scanner{d: d, pattern: pattern}, nil
}

// Next returns the next occurrence in document order. ok is false once
// the document is exhausted.
func (s *Scanner) Next() (occ Occurrence, ok bool) {
	for s.line < len(s.d.lines) {
		rest := s.d.lines[s.line][s.col:]
		idx := strings.Index(rest, s.pattern)
		if idx < 0 {
			s.line++
			s.col = 0
			continue
		}
		s.col += idx
		s.ordinal++
		occ = Occurrence{Line: s.line + 1, Column: s.col + 1, Ordinal: s.ordinal}
		s.col += len(s.pattern)
		return occ, true
	}
	return Occurrence{}, false
}

// Reset rewinds the scanner to before the first occurrence.
func (s *Scanner) Reset() {
	s.line = 0
	s.col = 0
	s.ordinal = 0
}

// FindOccurrences collects every occurrence of pattern in d. It fails
// only on an empty pattern.
func FindOccurrences(d Document, pattern string) ([]Occurrence, error) {
	s, err := NewScanner(d, pattern)
	if err != nil {
		return nil, err
	}
	var occs []Occurrence
	for occ, ok := s.Next(); ok; occ, ok = s.Next() {
		occs = append(occs, occ)
	}
	return occs, nil
}

// CountInLine returns the number of non-overlapping occurrences of
// pattern within the 1-based line n, or zero when n is out of bounds.
func CountInLine(d Document, n int, pattern string) int {
	content, ok := d.Line(n)
	if !ok || pattern == "" {
		return 0
	}
	return strings.Count(content, pattern)
}
