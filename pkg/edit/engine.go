package edit

import (
	"strings"

	"github.com/walteh/presspatch/pkg/doc"
)

// Mutate applies req to d and returns the outcome. The input document is
// never modified; the new document is carried in Result.After.
func Mutate(d doc.Document, req Request) Result {
	return apply(d, req)
}

// Preview computes exactly the Result that Mutate would produce, with
// the contractual guarantee that nothing outside the returned value is
// touched. Mutate(d, req) after Preview(d, req) yields an identical
// Result for the same inputs.
func Preview(d doc.Document, req Request) Result {
	return apply(d, req)
}

// apply validates the request, then dispatches on the locator kind.
// Validation happens before any scanning so that a malformed request
// can never partially mutate.
func apply(d doc.Document, req Request) Result {
	if req.Pattern == "" {
		return unchanged(d, StatusInvalidArgument)
	}

	switch req.Locator.Kind {
	case KindLine:
		if req.Locator.Line < 1 || req.Locator.Line > d.NumLines() {
			return unchanged(d, StatusInvalidLocation)
		}
		return replaceInLines(d, req, req.Locator.Line, req.Locator.Line)

	case KindRange:
		start, end := req.Locator.Start, req.Locator.End
		if start < 1 || end > d.NumLines() || start > end {
			return unchanged(d, StatusInvalidLocation)
		}
		return replaceInLines(d, req, start, end)

	case KindNth:
		if req.Locator.Nth < 1 {
			return unchanged(d, StatusInvalidArgument)
		}
		return replaceNth(d, req)

	case KindAll:
		return replaceAll(d, req)

	default:
		return unchanged(d, StatusInvalidArgument)
	}
}

// replaceInLines replaces every occurrence of the pattern on each line
// in [start, end]. A line with no match contributes zero replacements;
// the request only fails with StatusNoMatch when no line in the range
// matched. A single-line request is the start == end case.
func replaceInLines(d doc.Document, req Request, start, end int) Result {
	after := d
	total := 0
	var changed []int
	for n := start; n <= end; n++ {
		count := doc.CountInLine(after, n, req.Pattern)
		if count == 0 {
			continue
		}
		content, _ := after.Line(n)
		after = after.WithLine(n, strings.ReplaceAll(content, req.Pattern, req.Replacement))
		total += count
		changed = append(changed, n)
	}
	if total == 0 {
		return unchanged(d, StatusNoMatch)
	}
	return Result{
		Status:           StatusApplied,
		ReplacementsMade: total,
		Before:           d,
		After:            after,
		ChangedLines:     changed,
	}
}

// replaceNth replaces exactly the occurrence at the request's global
// ordinal, leaving every other occurrence untouched, including others
// on the same line.
func replaceNth(d doc.Document, req Request) Result {
	scanner, err := doc.NewScanner(d, req.Pattern)
	if err != nil {
		return unchanged(d, StatusInvalidArgument)
	}
	for occ, ok := scanner.Next(); ok; occ, ok = scanner.Next() {
		if occ.Ordinal != req.Locator.Nth {
			continue
		}
		content, _ := d.Line(occ.Line)
		col := occ.Column - 1
		newContent := content[:col] + req.Replacement + content[col+len(req.Pattern):]
		return Result{
			Status:           StatusApplied,
			ReplacementsMade: 1,
			Before:           d,
			After:            d.WithLine(occ.Line, newContent),
			ChangedLines:     []int{occ.Line},
		}
	}
	// Fewer occurrences than the requested ordinal.
	return unchanged(d, StatusNoMatch)
}

// replaceAll replaces every occurrence in the document. Unlike the
// positional locators it always reports StatusApplied: "all" carries no
// ambiguity to guard against, so an absent pattern is simply zero
// replacements.
func replaceAll(d doc.Document, req Request) Result {
	after := d
	total := 0
	var changed []int
	for n := 1; n <= d.NumLines(); n++ {
		count := doc.CountInLine(after, n, req.Pattern)
		if count == 0 {
			continue
		}
		content, _ := after.Line(n)
		after = after.WithLine(n, strings.ReplaceAll(content, req.Pattern, req.Replacement))
		total += count
		changed = append(changed, n)
	}
	return Result{
		Status:           StatusApplied,
		ReplacementsMade: total,
		Before:           d,
		After:            after,
		ChangedLines:     changed,
	}
}
