package matcher

import "testing"

func TestSmartFindExactSingleLine(t *testing.T) {
	content := "alpha\nbeta\ngamma\n"
	ranges := SmartFind(content, "beta")
	if len(ranges) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(ranges), ranges)
	}
	if content[ranges[0].Start:ranges[0].End] != "beta\n" {
		t.Fatalf("unexpected range text: %q", content[ranges[0].Start:ranges[0].End])
	}
}

func TestSmartFindIgnoresBlankLinesBetween(t *testing.T) {
	content := "def f():\n\n    x = 1\n\n\n    y = 2\n"
	ranges := SmartFind(content, "x = 1\ny = 2")
	if len(ranges) != 1 {
		t.Fatalf("expected 1 match tolerant of blank lines, got %d", len(ranges))
	}
}

func TestSmartFindHybridHeadComparison(t *testing.T) {
	content := "    if cond:\n        return 1\n"
	ranges := SmartFind(content, "if cond:\n    return 1")
	if len(ranges) != 1 {
		t.Fatalf("expected hybrid head comparison to match indented head line, got %d matches", len(ranges))
	}
}

func TestSmartFindMultipleOccurrences(t *testing.T) {
	content := "x=1\nx=1\n"
	ranges := SmartFind(content, "x=1")
	if len(ranges) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(ranges))
	}
}

func TestSmartFindNoMatch(t *testing.T) {
	ranges := SmartFind("alpha\nbeta\n", "gamma")
	if ranges != nil {
		t.Fatalf("expected no matches, got %v", ranges)
	}
}

func TestSmartFindEmptySnippet(t *testing.T) {
	ranges := SmartFind("alpha\n", "   \n  \n")
	if ranges != nil {
		t.Fatalf("an entirely blank snippet should never match, got %v", ranges)
	}
}

func TestSmartFindRequiresExactTailLines(t *testing.T) {
	content := "  foo bar\n  baz\n"
	ranges := SmartFind(content, "foo bar\n  qux")
	if ranges != nil {
		t.Fatalf("second line must match exactly after stripping, got %v", ranges)
	}
}
