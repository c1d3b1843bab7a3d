// Package mutator applies one Modification's resolved range against a
// file's working buffer: range expansion via include_leading/trailing_blank_lines,
// idempotency gates that turn an already-applied edit into a no-op instead
// of an error, and the trailing-newline discipline that keeps a REPLACE from
// silently merging two lines together. It generalises edit_patch.go's
// applyChunk (deletion-verify-then-splice) to AP 3.0's four actions.
package mutator

import (
	"strings"

	"github.com/kvit-s/apcore/internal/aperrors"
	"github.com/kvit-s/apcore/internal/locator"
	"github.com/kvit-s/apcore/internal/matcher"
	"github.com/kvit-s/apcore/internal/patchfile"
)

// Outcome is the result of applying one Modification.
type Outcome struct {
	Buffer string

	// Cursor is the new cursor value the caller should carry into the next
	// modification, valid only when CursorSet is true. Modifications with no
	// well-defined resolved start (CREATE_FILE, or a DELETE recovered purely
	// by idempotency with no located range) leave the cursor untouched.
	Cursor    int
	CursorSet bool

	// Skipped is true when the modification was judged already applied
	// (an idempotent no-op) rather than newly applied.
	Skipped bool
}

// Apply performs mod against buffer. exists reports whether the target file
// already existed when read, which only CREATE_FILE consults.
func Apply(buffer string, exists bool, mod *patchfile.Modification, cursor int) (Outcome, error) {
	if mod.Action == patchfile.ActionCreateFile {
		return applyCreateFile(buffer, exists, mod)
	}
	return applyLocated(buffer, mod, cursor)
}

func applyCreateFile(buffer string, exists bool, mod *patchfile.Modification) (Outcome, error) {
	content := mod.Content
	if !exists {
		return Outcome{Buffer: content}, nil
	}
	if matcher.NormalizeBlock(buffer) == matcher.NormalizeBlock(content) {
		return Outcome{Buffer: buffer, Skipped: true}, nil
	}
	if strings.TrimSpace(buffer) == "" {
		return Outcome{Buffer: content}, nil
	}
	return Outcome{}, aperrors.New(aperrors.CodeFileExists,
		"file already exists with different content", nil)
}

func applyLocated(buffer string, mod *patchfile.Modification, cursor int) (Outcome, error) {
	var loc locator.Result
	var err error
	if mod.HasEndSnippet && !collapsesToPointLocator(mod) {
		loc, err = locator.LocateRange(buffer, mod.Anchor, mod.Snippet, mod.EndSnippet, cursor)
	} else {
		loc, err = locator.Locate(buffer, mod.Anchor, mod.Snippet, cursor)
	}

	if err != nil {
		if aperrors.Is(err, aperrors.CodeSnippetNotFound) {
			if out, recovered := recoverIdempotent(buffer, mod, cursor); recovered {
				return out, nil
			}
		}
		return Outcome{}, err
	}

	start, end := loc.Start, loc.End
	start = expandLeading(buffer, start, mod.IncludeLeadingBlankLines)
	end = expandTrailing(buffer, end, mod.IncludeTrailingBlankLines)

	if skipped, ok := checkIdempotent(buffer, mod, start, end); ok {
		return Outcome{Buffer: buffer, Cursor: start, CursorSet: true, Skipped: skipped}, nil
	}

	if mod.Action == patchfile.ActionDelete {
		newBuf := buffer[:start] + buffer[end:]
		return Outcome{Buffer: newBuf, Cursor: start, CursorSet: true}, nil
	}

	content := withTrailingNewlineDiscipline(buffer, mod, end)

	var newBuf string
	switch mod.Action {
	case patchfile.ActionReplace:
		newBuf = buffer[:start] + content + buffer[end:]
	case patchfile.ActionInsertAfter:
		newBuf = buffer[:end] + content + buffer[end:]
	case patchfile.ActionInsertBefore:
		newBuf = buffer[:start] + content + buffer[start:]
	}
	return Outcome{Buffer: newBuf, Cursor: start, CursorSet: true}, nil
}

// collapsesToPointLocator applies the two pre-locate heuristics that drop a
// modification's end_snippet and fall back to a plain point locator: an
// end_snippet that normalises identically to content is redundant (the
// replacement already states where it ends), and an end_snippet whose
// stripped lines are the last stripped lines of snippet describes one block,
// not a range.
func collapsesToPointLocator(mod *patchfile.Modification) bool {
	end := matcher.NormalizeBlock(mod.EndSnippet)
	if end == matcher.NormalizeBlock(mod.Content) {
		return true
	}
	snippet := matcher.NormalizeBlock(mod.Snippet)
	return end == "" || snippet == end || strings.HasSuffix(snippet, "\n"+end)
}

// recoverIdempotent implements the idempotency fallback for a locator that
// returned SNIPPET_NOT_FOUND: a DELETE whose snippet is already gone is
// treated as already applied unconditionally; a REPLACE is treated as
// already applied only if its proposed content is itself locatable.
func recoverIdempotent(buffer string, mod *patchfile.Modification, cursor int) (Outcome, bool) {
	switch mod.Action {
	case patchfile.ActionDelete:
		return Outcome{Buffer: buffer, Skipped: true}, true
	case patchfile.ActionReplace:
		if alt, altErr := locator.Locate(buffer, mod.Anchor, mod.Content, cursor); altErr == nil {
			return Outcome{Buffer: buffer, Cursor: alt.Start, CursorSet: true, Skipped: true}, true
		}
	}
	return Outcome{}, false
}

// checkIdempotent evaluates the per-action idempotency gate against an
// already-resolved [start, end) range.
func checkIdempotent(buffer string, mod *patchfile.Modification, start, end int) (skipped bool, matched bool) {
	switch mod.Action {
	case patchfile.ActionReplace:
		if matcher.NormalizeBlock(buffer[start:end]) == matcher.NormalizeBlock(mod.Content) {
			return true, true
		}
	case patchfile.ActionInsertAfter:
		if strings.HasPrefix(matcher.NormalizeBlock(buffer[end:]), matcher.NormalizeBlock(mod.Content)) {
			return true, true
		}
	case patchfile.ActionInsertBefore:
		if strings.HasSuffix(matcher.NormalizeBlock(buffer[:start]), matcher.NormalizeBlock(mod.Content)) {
			return true, true
		}
	}
	return false, false
}

// withTrailingNewlineDiscipline ensures inserted/replacing content ends with
// a newline whenever the line it is adjacent to expects one: INSERT_AFTER
// and INSERT_BEFORE always splice between existing lines, and a REPLACE
// whose matched range itself ended at a line boundary must not swallow that
// boundary.
func withTrailingNewlineDiscipline(buffer string, mod *patchfile.Modification, end int) string {
	content := mod.Content
	if content == "" {
		return content
	}
	endedWithLF := end > 0 && end <= len(buffer) && buffer[end-1] == '\n'
	needsLF := mod.Action == patchfile.ActionInsertAfter ||
		mod.Action == patchfile.ActionInsertBefore ||
		(mod.Action == patchfile.ActionReplace && endedWithLF)
	if needsLF && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content
}
