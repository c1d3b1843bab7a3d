package filedriver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kvit-s/apcore/internal/aperrors"
	"github.com/kvit-s/apcore/internal/patchfile"
)

// resolveFailureReportPath joins a relative path onto the process's current
// working directory, leaving an absolute one untouched, and falls back to
// the "afailed.ap" default when path is empty. Per spec.md §5, afailed.ap is
// scoped to "the process working directory", not the patched project
// directory — a library caller's ProjectDir and os.Getwd() need not match.
func resolveFailureReportPath(path string) (string, error) {
	if path == "" {
		path = "afailed.ap"
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, path), nil
}

// CheckAfailedAbsent refuses to run force mode if a previous run's replay
// log is still sitting at path, per spec: re-running force mode over an
// unconsumed afailed.ap would silently discard it.
func CheckAfailedAbsent(path string) error {
	p, err := resolveFailureReportPath(path)
	if err != nil {
		return aperrors.Newf(aperrors.CodeAfailedExists, nil, "cannot resolve failure report path: %v", err)
	}
	if _, statErr := os.Stat(p); statErr == nil {
		return aperrors.New(aperrors.CodeAfailedExists, "afailed.ap already exists in the working directory", map[string]any{"path": p})
	}
	return nil
}

// WriteAfailed serialises the FileChanges that failed during a force-mode
// run into a new patch file at path (or ./afailed.ap by default, relative to
// the process working directory), using the same patch_id as the original
// run so the replay log is itself a valid AP 3.0 patch.
func WriteAfailed(path, patchID string, failed []patchfile.FileChange) error {
	resolved, err := resolveFailureReportPath(path)
	if err != nil {
		return err
	}
	plan := &patchfile.Plan{PatchID: patchID, Changes: failed}
	return os.WriteFile(resolved, patchfile.Serialize(plan), 0o644)
}

// WriteFailureLog dumps the full diagnostic context for one failed
// modification (idx < 0 writes the single-digest afailed.log; idx >= 0
// writes a per-failure afailed.<idx>.log) when the caller opted into
// create_failure_case. Like afailed.ap itself, these live in the process
// working directory.
func WriteFailureLog(idx int, detail map[string]any) error {
	name := "afailed.log"
	if idx >= 0 {
		name = fmt.Sprintf("afailed.%d.log", idx)
	}
	resolved, err := resolveFailureReportPath(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(detail); err != nil {
		return err
	}
	return os.WriteFile(resolved, buf.Bytes(), 0o644)
}
