// Package doc provides the line-oriented document model and occurrence
// scanning used by the mutation engine. A Document is an immutable value:
// every mutation produces a new Document, and rendering an unmodified
// Document reproduces the original text byte-for-byte, including mixed
// line terminators and a missing trailing terminator.
package doc

import "strings"

// Document is an ordered sequence of lines with per-line terminators
// recorded so that Render round-trips exactly.
type Document struct {
	lines []string
	// terms[i] is the terminator that followed lines[i] in the raw text
	// ("\n", "\r\n", or "" for a final line with no trailing terminator).
	terms []string
}

// Parse splits raw text into a Document. It never fails: empty input
// yields a single empty line, and a missing trailing terminator is
// preserved through Render.
func Parse(raw string) Document {
	var lines, terms []string
	rest := raw
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			lines = append(lines, rest)
			terms = append(terms, "")
			break
		}
		line, term := rest[:idx], "\n"
		if strings.HasSuffix(line, "\r") {
			line, term = line[:len(line)-1], "\r\n"
		}
		lines = append(lines, line)
		terms = append(terms, term)
		rest = rest[idx+1:]
		if rest == "" && len(raw) > 0 {
			// Trailing terminator: the text ends here rather than with an
			// extra empty line.
			break
		}
	}
	return Document{lines: lines, terms: terms}
}

// NumLines returns the number of lines in the document.
func (d Document) NumLines() int {
	return len(d.lines)
}

// Line returns the 1-based line n without its terminator. ok is false
// when n is out of bounds.
func (d Document) Line(n int) (content string, ok bool) {
	if n < 1 || n > len(d.lines) {
		return "", false
	}
	return d.lines[n-1], true
}

// Lines returns a copy of all line contents in order.
func (d Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// WithLine returns a new Document with 1-based line n replaced by
// content. The line's original terminator is kept. Out-of-bounds n
// returns the document unchanged.
func (d Document) WithLine(n int, content string) Document {
	if n < 1 || n > len(d.lines) {
		return d
	}
	lines := make([]string, len(d.lines))
	copy(lines, d.lines)
	lines[n-1] = content
	return Document{lines: lines, terms: d.terms}
}

// Render reassembles the document into its raw text form.
func (d Document) Render() string {
	var b strings.Builder
	for i, line := range d.lines {
		b.WriteString(line)
		b.WriteString(d.terms[i])
	}
	return b.String()
}

// Equal reports whether two documents render to identical text.
func (d Document) Equal(other Document) bool {
	if len(d.lines) != len(other.lines) {
		return false
	}
	for i := range d.lines {
		if d.lines[i] != other.lines[i] || d.terms[i] != other.terms[i] {
			return false
		}
	}
	return true
}
