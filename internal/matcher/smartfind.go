// Package matcher implements smart_find, the whitespace- and blank-line-
// tolerant line matcher the locator builds anchor and snippet resolution on
// top of, plus the normalised-comparison and fuzzy-suggestion helpers that
// ride alongside it. It is the AP-engine generalisation of the teacher's
// progressive-normalisation matching in edit_patch.go's matchContext and the
// Ratcliff/Obershelp ratio in edit_fuzzy.go.
package matcher

import "strings"

// Range is a byte offset pair, [Start, End), into the buffer SmartFind was
// run against.
type Range struct {
	Start, End int
}

// SmartFind returns every occurrence of snippet in content under the
// matching rule: snippet's non-blank lines are compared, in order, against
// content's non-blank lines (blank content lines are skipped transparently
// between matched lines); the first matched content line need only END WITH
// the stripped first snippet line (hybrid head comparison), while every
// subsequent line must be exactly equal after stripping.
func SmartFind(content, snippet string) []Range {
	normSnippet := normalizeSnippetLines(snippet)
	if len(normSnippet) == 0 {
		return nil
	}

	lines := splitLinesKeepEnds(content)
	offsets := make([]int, len(lines)+1)
	for i, l := range lines {
		offsets[i+1] = offsets[i] + len(l)
	}

	var ranges []Range
	for i := range lines {
		if isBlank(lines[i]) {
			continue
		}

		var collected []int
		for j := i; j < len(lines) && len(collected) < len(normSnippet); j++ {
			if !isBlank(lines[j]) {
				collected = append(collected, j)
			}
		}
		if len(collected) != len(normSnippet) {
			continue
		}

		matched := true
		for k, lineIdx := range collected {
			stripped := strings.TrimSpace(lines[lineIdx])
			if k == 0 {
				if !strings.HasSuffix(stripped, normSnippet[0]) {
					matched = false
					break
				}
				continue
			}
			if stripped != normSnippet[k] {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		last := collected[len(collected)-1]
		ranges = append(ranges, Range{Start: offsets[i], End: offsets[last+1]})
	}
	return ranges
}

// normalizeSnippetLines strips the snippet into the list of its non-blank
// lines with leading/trailing whitespace removed, the form every comparison
// in SmartFind operates on.
func normalizeSnippetLines(snippet string) []string {
	var out []string
	for _, l := range strings.Split(snippet, "\n") {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// splitLinesKeepEnds splits s into physical lines, each retaining its
// trailing "\n" (the final line keeps none if s doesn't end in one). This
// mirrors Python's str.splitlines(keepends=True), which the offsets in
// SmartFind depend on.
func splitLinesKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
