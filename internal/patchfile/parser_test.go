package patchfile

import (
	"testing"

	"github.com/kvit-s/apcore/internal/aperrors"
)

func TestParseBasicReplace(t *testing.T) {
	data := []byte(`a1b2c3d4 AP 3.0
a1b2c3d4 FILE
a1b2c3d4 path
main.go
a1b2c3d4 REPLACE
a1b2c3d4 snippet
beta
a1b2c3d4 content
BETA
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.PatchID != "a1b2c3d4" {
		t.Fatalf("unexpected patch id: %q", plan.PatchID)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(plan.Changes))
	}
	fc := plan.Changes[0]
	if fc.Path != "main.go" {
		t.Fatalf("unexpected path: %q", fc.Path)
	}
	if len(fc.Modifications) != 1 {
		t.Fatalf("expected 1 modification, got %d", len(fc.Modifications))
	}
	mod := fc.Modifications[0]
	if mod.Action != ActionReplace || mod.Snippet != "beta" || mod.Content != "BETA" {
		t.Fatalf("unexpected modification: %+v", mod)
	}
}

func TestParseCreateFile(t *testing.T) {
	data := []byte(`deadbeef AP 3.0
deadbeef CREATE_FILE
deadbeef path
new.go
deadbeef content
package main
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(plan.Changes))
	}
	mods := plan.Changes[0].Modifications
	if len(mods) != 1 || mods[0].Action != ActionCreateFile {
		t.Fatalf("expected a single CREATE_FILE modification, got %+v", mods)
	}
	if mods[0].Content != "package main" {
		t.Fatalf("unexpected content: %q", mods[0].Content)
	}
}

func TestParseCreateFileWithoutContentIsInvalid(t *testing.T) {
	data := []byte(`deadbeef AP 3.0
deadbeef CREATE_FILE
deadbeef path
new.go
`)
	_, err := Parse(data)
	if !aperrors.Is(err, aperrors.CodeInvalidModification) {
		t.Fatalf("expected INVALID_MODIFICATION, got %v", err)
	}
}

func TestParseMultipleModificationsSameFile(t *testing.T) {
	data := []byte(`12345678 AP 3.0
12345678 FILE
12345678 path
a.go
12345678 REPLACE
12345678 snippet
one
12345678 content
ONE
12345678 DELETE
12345678 snippet
two
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mods := plan.Changes[0].Modifications
	if len(mods) != 2 {
		t.Fatalf("expected 2 modifications, got %d", len(mods))
	}
	if mods[0].Action != ActionReplace || mods[1].Action != ActionDelete {
		t.Fatalf("unexpected action order: %+v", mods)
	}
}

func TestParseRangeLocator(t *testing.T) {
	data := []byte(`abcdefab AP 3.0
abcdefab FILE
abcdefab path
a.go
abcdefab REPLACE
abcdefab snippet
# START
abcdefab end_snippet
# END
abcdefab content
# NEW
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mod := plan.Changes[0].Modifications[0]
	if !mod.HasEndSnippet || mod.EndSnippet != "# END" {
		t.Fatalf("expected end_snippet to be captured, got %+v", mod)
	}
}

func TestParseNewlineDirective(t *testing.T) {
	data := []byte(`a1a1a1a1 AP 3.0
a1a1a1a1 FILE CRLF
a1a1a1a1 path
a.go
a1a1a1a1 REPLACE
a1a1a1a1 snippet
x
a1a1a1a1 content
y
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Changes[0].Newline != NewlineCRLF {
		t.Fatalf("expected CRLF newline directive, got %v", plan.Changes[0].Newline)
	}
}

func TestParseIntArgs(t *testing.T) {
	data := []byte(`a1a1a1a1 AP 3.0
a1a1a1a1 FILE
a1a1a1a1 path
a.go
a1a1a1a1 DELETE
a1a1a1a1 snippet
x
a1a1a1a1 include_leading_blank_lines 2
a1a1a1a1 include_trailing_blank_lines 1
`)
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mod := plan.Changes[0].Modifications[0]
	if mod.IncludeLeadingBlankLines != 2 || mod.IncludeTrailingBlankLines != 1 {
		t.Fatalf("unexpected modification: %+v", mod)
	}
}

func TestParseMissingHeader(t *testing.T) {
	_, err := Parse([]byte("no header here\n"))
	if !aperrors.Is(err, aperrors.CodeInvalidPatchFile) {
		t.Fatalf("expected INVALID_PATCH_FILE, got %v", err)
	}
}

func TestParseReplaceRequiresSnippet(t *testing.T) {
	data := []byte(`a1a1a1a1 AP 3.0
a1a1a1a1 FILE
a1a1a1a1 path
a.go
a1a1a1a1 REPLACE
a1a1a1a1 content
y
`)
	_, err := Parse(data)
	if !aperrors.Is(err, aperrors.CodeInvalidModification) {
		t.Fatalf("expected INVALID_MODIFICATION, got %v", err)
	}
}

func TestParseInsertAfterRejectsEndSnippet(t *testing.T) {
	data := []byte(`a1a1a1a1 AP 3.0
a1a1a1a1 FILE
a1a1a1a1 path
a.go
a1a1a1a1 INSERT_AFTER
a1a1a1a1 snippet
x
a1a1a1a1 end_snippet
y
a1a1a1a1 content
z
`)
	_, err := Parse(data)
	if !aperrors.Is(err, aperrors.CodeInvalidModification) {
		t.Fatalf("expected INVALID_MODIFICATION, got %v", err)
	}
}

func TestParseAcceptsCRLFFileEndings(t *testing.T) {
	data := []byte("a1a1a1a1 AP 3.0\r\na1a1a1a1 FILE\r\na1a1a1a1 path\r\na.go\r\na1a1a1a1 REPLACE\r\na1a1a1a1 snippet\r\nx\r\na1a1a1a1 content\r\ny\r\n")
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error parsing CRLF patch file: %v", err)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(plan.Changes))
	}
}

func TestParseSkipsCommentsBeforeHeader(t *testing.T) {
	data := []byte("# a comment\n\na1a1a1a1 AP 3.0\na1a1a1a1 FILE\na1a1a1a1 path\na.go\na1a1a1a1 DELETE\na1a1a1a1 snippet\nx\n")
	plan, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.PatchID != "a1a1a1a1" {
		t.Fatalf("unexpected patch id: %q", plan.PatchID)
	}
}
