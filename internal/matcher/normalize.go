package matcher

import "strings"

// NormalizeBlock implements the "normalised comparison" the mutator's
// idempotency gates and CREATE_FILE's existing-content check both use: split
// into lines, strip each, drop entirely-blank lines, rejoin with LF.
func NormalizeBlock(s string) string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, "\n")
}
