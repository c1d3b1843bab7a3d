package patchfile

import "testing"

func TestSerializeRoundTripsThroughParse(t *testing.T) {
	plan := &Plan{
		PatchID: "abc12345",
		Changes: []FileChange{
			{
				Path:    "main.go",
				Newline: NewlineCRLF,
				Modifications: []Modification{
					{Action: ActionReplace, Anchor: "func main", Snippet: "foo", Content: "bar"},
					{Action: ActionDelete, Snippet: "dead code"},
				},
			},
		},
	}

	out := Serialize(plan)
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("serialized plan failed to re-parse: %v\n%s", err, out)
	}

	if reparsed.PatchID != plan.PatchID {
		t.Fatalf("patch id did not round-trip: got %q", reparsed.PatchID)
	}
	if len(reparsed.Changes) != 1 || reparsed.Changes[0].Path != "main.go" {
		t.Fatalf("unexpected round-tripped changes: %+v", reparsed.Changes)
	}
	if reparsed.Changes[0].Newline != NewlineCRLF {
		t.Fatalf("newline directive did not round-trip: %v", reparsed.Changes[0].Newline)
	}
	mods := reparsed.Changes[0].Modifications
	if len(mods) != 2 {
		t.Fatalf("expected 2 modifications, got %d", len(mods))
	}
	if mods[0].Anchor != "func main" || mods[0].Snippet != "foo" || mods[0].Content != "bar" {
		t.Fatalf("first modification did not round-trip: %+v", mods[0])
	}
	if mods[1].Action != ActionDelete || mods[1].Snippet != "dead code" {
		t.Fatalf("second modification did not round-trip: %+v", mods[1])
	}
}

func TestSerializeCreateFileRoundTrips(t *testing.T) {
	plan := &Plan{
		PatchID: "deadbeef",
		Changes: []FileChange{
			{
				Path: "new.go",
				Modifications: []Modification{
					{Action: ActionCreateFile, Content: "package main\n"},
				},
			},
		},
	}

	out := Serialize(plan)
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("serialized CREATE_FILE plan failed to re-parse: %v\n%s", err, out)
	}
	if len(reparsed.Changes) != 1 || reparsed.Changes[0].Modifications[0].Action != ActionCreateFile {
		t.Fatalf("unexpected round-tripped plan: %+v", reparsed)
	}
}

func TestSerializeRangeLocatorRoundTrips(t *testing.T) {
	plan := &Plan{
		PatchID: "12121212",
		Changes: []FileChange{
			{
				Path: "a.go",
				Modifications: []Modification{
					{Action: ActionReplace, Snippet: "# START", EndSnippet: "# END", HasEndSnippet: true, Content: "# NEW"},
				},
			},
		},
	}
	out := Serialize(plan)
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("failed to re-parse: %v\n%s", err, out)
	}
	mod := reparsed.Changes[0].Modifications[0]
	if !mod.HasEndSnippet || mod.EndSnippet != "# END" {
		t.Fatalf("end_snippet did not round-trip: %+v", mod)
	}
}
