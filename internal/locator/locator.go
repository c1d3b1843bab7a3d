// Package locator resolves an anchor/snippet pair (optionally with an
// end_snippet for a range locator) against a file's working buffer into a
// byte-offset Result, the generalisation of edit_patch.go's
// findChunkPosition context/scope/deletions fallback chain into AP 3.0's
// two-phase anchor-then-snippet resolution.
package locator

import (
	"github.com/kvit-s/apcore/internal/aperrors"
	"github.com/kvit-s/apcore/internal/matcher"
)

// Result is the resolved [Start, End) byte range a modification applies against.
type Result struct {
	Start, End int
}

// Locate resolves anchor (optional) and snippet against buffer, honouring
// cursor as the forward-bias hint from the previous modification's
// resolution. anchor == "" skips the anchor phase entirely.
func Locate(buffer, anchor, snippet string, cursor int) (Result, error) {
	searchSpace := buffer
	offset := 0
	hadAnchor := anchor != ""

	if hadAnchor {
		anchorRange, err := resolveAnchor(buffer, anchor, snippet, cursor)
		if err != nil {
			return Result{}, err
		}
		if overlaps(anchor, snippet) {
			searchSpace = buffer[anchorRange.Start:]
			offset = anchorRange.Start
		} else {
			searchSpace = buffer[anchorRange.End:]
			offset = anchorRange.End
		}
	}

	occs := matcher.SmartFind(searchSpace, snippet)
	if len(occs) > 1 && cursor > 0 {
		for i := range occs {
			if occs[i].Start+offset >= cursor {
				occs = occs[i : i+1]
				break
			}
		}
	}

	if len(occs) == 0 {
		return Result{}, snippetNotFoundError(anchor, hadAnchor, snippet, searchSpace)
	}
	if len(occs) > 1 {
		if hadAnchor {
			occs = occs[:1]
		} else {
			return Result{}, aperrors.New(aperrors.CodeAmbiguousMatch,
				"snippet matched more than one location and no anchor was given to disambiguate",
				map[string]any{"snippet": snippet, "match_count": len(occs)})
		}
	}

	return Result{Start: occs[0].Start + offset, End: occs[0].End + offset}, nil
}

// LocateRange resolves a range locator: Locate finds the start of the range
// via snippet, then end_snippet is searched for starting immediately after
// that match to find where the range ends.
func LocateRange(buffer, anchor, snippet, endSnippet string, cursor int) (Result, error) {
	start, err := Locate(buffer, anchor, snippet, cursor)
	if err != nil {
		return Result{}, err
	}
	rest := buffer[start.End:]
	ends := matcher.SmartFind(rest, endSnippet)
	if len(ends) == 0 {
		return Result{}, aperrors.New(aperrors.CodeEndSnippetNotFound,
			"end_snippet not found after the start of the range",
			map[string]any{"end_snippet": endSnippet})
	}
	return Result{Start: start.Start, End: start.End + ends[0].End}, nil
}

// resolveAnchor runs the anchor phase: find every anchor occurrence, narrow
// by the cursor, then by deep-scope resolution (an anchor "wins" only if no
// other anchor shadows the first snippet occurrence after it), finally
// erroring as ambiguous if more than one anchor remains.
func resolveAnchor(buffer, anchor, snippet string, cursor int) (matcher.Range, error) {
	anchors := matcher.SmartFind(buffer, anchor)
	if len(anchors) == 0 {
		return matcher.Range{}, aperrors.New(aperrors.CodeAnchorNotFound,
			"anchor not found", map[string]any{"anchor": anchor, "suggestions": suggestionMaps(matcher.Suggest(buffer, anchor))})
	}

	candidates := anchors
	if len(candidates) > 1 && cursor > 0 {
		var filtered []matcher.Range
		for _, a := range candidates {
			if a.Start >= cursor {
				filtered = append(filtered, a)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	if len(candidates) > 1 {
		var validScopes []matcher.Range
		for _, a := range candidates {
			rest := buffer[a.End:]
			snippetMatches := matcher.SmartFind(rest, snippet)
			if len(snippetMatches) == 0 {
				continue
			}
			firstSnippetAbs := a.End + snippetMatches[0].Start
			shadowed := false
			for _, other := range candidates {
				if other == a {
					continue
				}
				if other.Start > a.End && other.Start < firstSnippetAbs {
					shadowed = true
					break
				}
			}
			if !shadowed {
				validScopes = append(validScopes, a)
			}
		}
		if len(validScopes) == 1 {
			candidates = validScopes
		}
	}

	if len(candidates) > 1 {
		return matcher.Range{}, aperrors.New(aperrors.CodeAmbiguousAnchor,
			"anchor matched more than one location", map[string]any{"anchor": anchor, "match_count": len(candidates)})
	}
	return candidates[0], nil
}

// overlaps implements the anchor/snippet overlap check: if the snippet
// begins with the anchor's lines, or the snippet's first line equals the
// anchor's last line, the snippet search space must start at the anchor's
// start rather than its end, or the anchor's own text would be excluded from
// a snippet that is meant to include it.
func overlaps(anchor, snippet string) bool {
	anchorLines := normalizeLines(anchor)
	snippetLines := normalizeLines(snippet)
	if len(anchorLines) == 0 || len(snippetLines) == 0 {
		return false
	}
	if len(snippetLines) >= len(anchorLines) {
		match := true
		for i, l := range anchorLines {
			if snippetLines[i] != l {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return snippetLines[0] == anchorLines[len(anchorLines)-1]
}

func normalizeLines(s string) []string {
	nb := matcher.NormalizeBlock(s)
	if nb == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(nb); i++ {
		if nb[i] == '\n' {
			out = append(out, nb[start:i])
			start = i + 1
		}
	}
	out = append(out, nb[start:])
	return out
}

func snippetNotFoundError(anchor string, hadAnchor bool, snippet, searchSpace string) error {
	return aperrors.New(aperrors.CodeSnippetNotFound, "snippet not found", map[string]any{
		"anchor":       anchor,
		"anchor_found": hadAnchor,
		"snippet":      snippet,
		"suggestions":  suggestionMaps(matcher.Suggest(searchSpace, snippet)),
	})
}

func suggestionMaps(suggestions []matcher.Suggestion) []map[string]any {
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]map[string]any, len(suggestions))
	for i, s := range suggestions {
		out[i] = map[string]any{"line": s.LineNumber, "score": s.Score, "text": s.Text}
	}
	return out
}
