package matcher

import "sort"

// Suggestion is one candidate location offered to the caller when a snippet
// or anchor could not be located exactly. It is diagnostic only: nothing in
// the locator or mutator ever applies a modification at a Suggestion.
type Suggestion struct {
	LineNumber int
	Score      float64
	Text       string
}

// Suggest slides a window, sized to the snippet's non-blank line count,
// across searchSpace's non-blank lines and scores each window against the
// snippet with SequenceMatcherRatio. Windows scoring at least 0.7 are kept,
// sorted by descending score, and truncated to the top 3 — the cutoff and
// fan-in the teacher's get_fuzzy_matches-equivalent error-suggestion path
// uses, generalised from a single-line comparison to a multi-line one so it
// can usefully suggest a home for multi-line snippets too.
func Suggest(searchSpace, snippet string) []Suggestion {
	normSnippet := normalizeSnippetLines(snippet)
	if len(normSnippet) == 0 {
		return nil
	}
	target := joinLF(normSnippet)

	lines := splitLinesPlain(searchSpace)
	type nonBlankLine struct {
		lineNo int // 1-based
		text   string
	}
	var nonBlank []nonBlankLine
	for i, l := range lines {
		if !isBlank(l) {
			nonBlank = append(nonBlank, nonBlankLine{lineNo: i + 1, text: l})
		}
	}

	window := len(normSnippet)
	var suggestions []Suggestion
	for start := 0; start+window <= len(nonBlank); start++ {
		raw := make([]string, window)
		for k := 0; k < window; k++ {
			raw[k] = nonBlank[start+k].text
		}
		windowText := joinLF(raw)
		ratio := SequenceMatcherRatio(windowText, target)
		if ratio >= 0.7 {
			suggestions = append(suggestions, Suggestion{
				LineNumber: nonBlank[start].lineNo,
				Score:      ratio,
				Text:       windowText,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

func joinLF(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

func splitLinesPlain(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// SequenceMatcherRatio implements a ratio equivalent to Python's
// difflib.SequenceMatcher.ratio(): 2 * matching_chars / total_chars, via the
// Ratcliff/Obershelp recursive longest-common-substring algorithm. Ported
// from the teacher's edit_fuzzy.go, which uses the identical algorithm for
// its own fuzzy-match fallback.
func SequenceMatcherRatio(s1, s2 string) float64 {
	if len(s1) == 0 && len(s2) == 0 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	matches := countMatchingChars(s1, s2)
	return 2.0 * float64(matches) / float64(len(s1)+len(s2))
}

func countMatchingChars(s1, s2 string) int {
	start1, start2, length := longestCommonSubstring(s1, s2)
	if length == 0 {
		return 0
	}

	matches := length
	if start1 > 0 && start2 > 0 {
		matches += countMatchingChars(s1[:start1], s2[:start2])
	}
	end1, end2 := start1+length, start2+length
	if end1 < len(s1) && end2 < len(s2) {
		matches += countMatchingChars(s1[end1:], s2[end2:])
	}
	return matches
}

func longestCommonSubstring(s1, s2 string) (start1, start2, length int) {
	if len(s1) == 0 || len(s2) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	maxLen, endPos1, endPos2 := 0, 0, 0
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > maxLen {
					maxLen = curr[j]
					endPos1, endPos2 = i, j
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for k := range curr {
			curr[k] = 0
		}
	}

	if maxLen == 0 {
		return 0, 0, 0
	}
	return endPos1 - maxLen, endPos2 - maxLen, maxLen
}
