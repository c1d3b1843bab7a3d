// Package report renders the outcome of an ApplyPatch run, both as a
// machine-readable JSON struct (grounded on internal/ui/writer.go's
// JSONOutput) and as a plain colorized terminal form using the same
// fatih/color the teacher's ui.Writer uses for its non-TUI output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/kvit-s/apcore/internal/aperrors"
)

// FileResult is one file's outcome within a Report.
type FileResult struct {
	Path      string `json:"path"`
	Status    string `json:"status"` // "written", "unchanged", "failed"
	Diff      string `json:"diff,omitempty"`
	Error     map[string]any `json:"error,omitempty"`
}

// Report is the full, structured outcome of one ApplyPatch call.
type Report struct {
	PatchID      string       `json:"patch_id"`
	RunID        string       `json:"run_id"`
	Success      bool         `json:"success"`
	Files        []FileResult `json:"files"`
	FailedCount  int          `json:"failed_count"`
	Error        map[string]any `json:"error,omitempty"`
	FailureCase  string       `json:"failure_report_path,omitempty"`
}

// Diff renders a unified diff between oldContent and newContent for path,
// grounded on filesystem.go's generateUnifiedDiff.
func Diff(path, oldContent, newContent string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", err
	}
	return trimTrailingNewline(s), nil
}

// WriteJSON marshals r as indented JSON to w.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteHuman renders r as a colorized plain-text summary to w. useColor
// controls whether ANSI codes are emitted at all, mirroring ui.Writer's
// color.New(...) call sites.
func WriteHuman(w io.Writer, r *Report, useColor bool) {
	green := plainOrColor(useColor, color.FgGreen)
	red := plainOrColor(useColor, color.FgRed)
	yellow := plainOrColor(useColor, color.FgYellow)
	gray := color.New(color.FgWhite, color.Faint)
	if !useColor {
		gray.DisableColor()
	}

	fmt.Fprintf(w, "patch %s (run %s)\n", r.PatchID, r.RunID)
	for _, f := range r.Files {
		switch f.Status {
		case "written":
			green.Fprintf(w, "  + %s\n", f.Path)
		case "unchanged":
			gray.Fprintf(w, "  = %s\n", f.Path)
		case "failed":
			red.Fprintf(w, "  x %s\n", f.Path)
			if f.Error != nil {
				yellow.Fprintf(w, "    %v\n", f.Error["message"])
			}
		}
	}
	if r.Success {
		green.Fprintf(w, "%d file(s) written\n", countStatus(r, "written"))
	} else {
		red.Fprintf(w, "%d of %d file(s) failed\n", r.FailedCount, len(r.Files))
		if r.FailureCase != "" {
			fmt.Fprintf(w, "failure replay log: %s\n", r.FailureCase)
		}
	}
}

func countStatus(r *Report, status string) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

func plainOrColor(useColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !useColor {
		c.DisableColor()
	}
	return c
}

// FromError builds the error body for a Report from any error, rendering
// *aperrors.Error via its own Report() method when possible.
func FromError(err error) map[string]any {
	if err == nil {
		return nil
	}
	if apErr, ok := aperrors.As(err); ok {
		return apErr.Report()
	}
	return map[string]any{"code": "INTERNAL", "message": err.Error()}
}

// trimTrailingNewline keeps diff output from picking up a spurious blank
// summary line when rendered inline with other report text.
func trimTrailingNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
