package mutator

import "strings"

// expandLeading walks start backwards across n entirely-blank lines at
// most, stopping as soon as a non-blank line is met. Ported from the
// original implementation's leading-blank-line walk in apply_patch, one line
// at a time rather than a single regexp so behaviour matches exactly at the
// start of the buffer.
func expandLeading(buffer string, start, n int) int {
	expanded := start
	for i := 0; i < n; i++ {
		searchEnd := expanded - 1
		if searchEnd < 0 {
			searchEnd = 0
		}
		lineStartIdx := strings.LastIndex(buffer[:searchEnd], "\n")
		if lineStartIdx == -1 {
			if strings.TrimSpace(buffer[:expanded]) == "" {
				expanded = 0
			}
			break
		}
		prevLine := buffer[lineStartIdx+1 : expanded]
		if strings.TrimSpace(prevLine) != "" {
			break
		}
		expanded = lineStartIdx + 1
	}
	return expanded
}

// expandTrailing is expandLeading's mirror for the trailing side.
func expandTrailing(buffer string, end, n int) int {
	current := end
	for i := 0; i < n; i++ {
		idx := strings.Index(buffer[current:], "\n")
		if idx == -1 {
			if strings.TrimSpace(buffer[current:]) == "" {
				end = len(buffer)
			}
			break
		}
		nextNewline := current + idx
		line := buffer[current:nextNewline]
		if strings.TrimSpace(line) != "" {
			break
		}
		end = nextNewline + 1
		current = end
	}
	return end
}
