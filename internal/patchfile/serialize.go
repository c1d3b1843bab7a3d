package patchfile

import (
	"fmt"
	"strings"
)

// Serialize renders a Plan back to AP 3.0 text. It is the inverse of Parse
// for the afailed.ap replay log: Parse(Serialize(plan)) reproduces the same
// patch_id, file paths, modifications and arguments as plan (whitespace
// inside blank-trimmed value blocks is not guaranteed byte-identical, since
// Parse already discards leading/trailing blank lines on read).
func Serialize(plan *Plan) []byte {
	var b strings.Builder
	b.WriteString(plan.PatchID)
	b.WriteString(" AP 3.0\n")
	prefix := plan.PatchID + " "

	for _, fc := range plan.Changes {
		if len(fc.Modifications) == 1 && fc.Modifications[0].Action == ActionCreateFile {
			writeDirective(&b, prefix, "CREATE_FILE", fc.Newline.String())
			writeValueBlock(&b, prefix, "path", fc.Path)
			if content := fc.Modifications[0].Content; content != "" {
				writeValueBlock(&b, prefix, "content", content)
			}
			continue
		}

		writeDirective(&b, prefix, "FILE", fc.Newline.String())
		writeValueBlock(&b, prefix, "path", fc.Path)
		for _, mod := range fc.Modifications {
			writeDirective(&b, prefix, mod.Action.String(), "")
			if mod.Anchor != "" {
				writeValueBlock(&b, prefix, "anchor", mod.Anchor)
			}
			if mod.Snippet != "" {
				writeValueBlock(&b, prefix, "snippet", mod.Snippet)
			}
			if mod.HasEndSnippet {
				writeValueBlock(&b, prefix, "end_snippet", mod.EndSnippet)
			}
			if mod.Content != "" && mod.Action != ActionDelete {
				writeValueBlock(&b, prefix, "content", mod.Content)
			}
			if mod.IncludeLeadingBlankLines > 0 {
				fmt.Fprintf(&b, "%sinclude_leading_blank_lines %d\n", prefix, mod.IncludeLeadingBlankLines)
			}
			if mod.IncludeTrailingBlankLines > 0 {
				fmt.Fprintf(&b, "%sinclude_trailing_blank_lines %d\n", prefix, mod.IncludeTrailingBlankLines)
			}
		}
	}
	return []byte(b.String())
}

func writeDirective(b *strings.Builder, prefix, keyword, arg string) {
	b.WriteString(prefix)
	b.WriteString(keyword)
	if arg != "" {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteByte('\n')
}

func writeValueBlock(b *strings.Builder, prefix, key, value string) {
	writeDirective(b, prefix, key, "")
	for _, line := range strings.Split(value, "\n") {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
