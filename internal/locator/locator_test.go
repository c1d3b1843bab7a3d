package locator

import (
	"testing"

	"github.com/kvit-s/apcore/internal/aperrors"
)

func TestLocateBasic(t *testing.T) {
	buf := "alpha\nbeta\ngamma\n"
	res, err := Locate(buf, "", "beta", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[res.Start:res.End] != "beta\n" {
		t.Fatalf("unexpected match: %q", buf[res.Start:res.End])
	}
}

func TestLocateAmbiguousWithoutAnchor(t *testing.T) {
	buf := "x=1\nx=1\n"
	_, err := Locate(buf, "", "x=1", 0)
	if !aperrors.Is(err, aperrors.CodeAmbiguousMatch) {
		t.Fatalf("expected AMBIGUOUS_MATCH, got %v", err)
	}
}

func TestLocateAnchorDisambiguates(t *testing.T) {
	buf := "def a():\n  x=1\ndef b():\n  x=1\n"
	res, err := Locate(buf, "def b():", "x=1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secondOccurrence := len("def a():\n  x=1\ndef b():\n")
	if res.Start != secondOccurrence {
		t.Fatalf("expected the anchor to select the second occurrence at %d, got %d", secondOccurrence, res.Start)
	}
}

func TestLocateAnchorNotFound(t *testing.T) {
	_, err := Locate("alpha\n", "missing anchor", "alpha", 0)
	if !aperrors.Is(err, aperrors.CodeAnchorNotFound) {
		t.Fatalf("expected ANCHOR_NOT_FOUND, got %v", err)
	}
}

func TestLocateSnippetNotFound(t *testing.T) {
	_, err := Locate("alpha\nbeta\n", "", "nope", 0)
	if !aperrors.Is(err, aperrors.CodeSnippetNotFound) {
		t.Fatalf("expected SNIPPET_NOT_FOUND, got %v", err)
	}
}

func TestLocateAmbiguousAnchor(t *testing.T) {
	buf := "marker\nmarker\nsnippet\n"
	_, err := Locate(buf, "marker", "snippet", 0)
	if !aperrors.Is(err, aperrors.CodeAmbiguousAnchor) {
		t.Fatalf("expected AMBIGUOUS_ANCHOR, got %v", err)
	}
}

func TestLocateCursorFiltersAnchors(t *testing.T) {
	buf := "marker\nfoo\nmarker\nsnippet\n"
	cursor := len("marker\nfoo\n")
	res, err := Locate(buf, "marker", "snippet", cursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := len("marker\nfoo\nmarker\n")
	if res.Start != want {
		t.Fatalf("expected the cursor to pin the second marker, got %d want %d", res.Start, want)
	}
}

func TestLocateRangeBasic(t *testing.T) {
	buf := "# START\nold1\nold2\n# END\n"
	res, err := LocateRange(buf, "", "# START", "# END", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[res.Start:res.End] != "# START\nold1\nold2\n# END\n" {
		t.Fatalf("unexpected range: %q", buf[res.Start:res.End])
	}
}

func TestLocateRangeEndSnippetNotFound(t *testing.T) {
	buf := "# START\nold1\n"
	_, err := LocateRange(buf, "", "# START", "# END", 0)
	if !aperrors.Is(err, aperrors.CodeEndSnippetNotFound) {
		t.Fatalf("expected END_SNIPPET_NOT_FOUND, got %v", err)
	}
}
