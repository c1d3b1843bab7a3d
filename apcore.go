// Package apcore applies AI-friendly patch files: a directive-based patch
// format designed so an LLM can describe an edit by anchor and snippet
// rather than by line number, tolerant of the whitespace and blank-line
// drift that separates an LLM's idea of a file from the file on disk.
//
// The pipeline is: parse the patch file (internal/patchfile), resolve each
// modification's anchor/snippet against the target file's working buffer
// (internal/locator, built on internal/matcher's smart_find), apply the edit
// with idempotency and range-expansion support (internal/mutator), and
// commit the result atomically (internal/filedriver).
package apcore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kvit-s/apcore/internal/applog"
	"github.com/kvit-s/apcore/internal/engine"
	"github.com/kvit-s/apcore/internal/patchfile"
	"github.com/kvit-s/apcore/internal/report"
)

// Options configures one ApplyPatch call.
type Options struct {
	// DryRun resolves and validates every modification without writing any
	// patched file or the afailed.ap replay log. The structured log
	// (LogPath) and the CreateFailureCase diagnostic logs are still written.
	DryRun bool

	// Force keeps applying remaining files after one fails instead of
	// aborting the whole run; failed files are written to an afailed.ap
	// replay log in the process working directory using the same patch_id.
	Force bool

	// CreateFailureCase additionally dumps a JSON diagnostic log per failed
	// file (afailed.log, or afailed.<n>.log per failure when there are
	// several) into the process working directory, in force and non-force
	// mode alike.
	CreateFailureCase bool

	// FailureReportPath overrides where the force-mode replay log is
	// written, relative to the process working directory unless absolute.
	// Defaults to "afailed.ap".
	FailureReportPath string

	// LogPath, if set, routes structured zap logging of every pipeline
	// stage to this file. Logging is disabled when empty.
	LogPath string

	// Debug switches the logger to a readable console encoding instead of
	// production JSON.
	Debug bool
}

// Report is the outcome of an ApplyPatch call.
type Report = report.Report

// ApplyPatch parses the patch file at patchPath and applies it against
// projectDir, honoring opts. Once the patch is parsed and the logger is
// open, it returns a Report even when err is non-nil; in non-force mode that
// Report lists the files up to and including the first one that failed. The
// Report is nil when the patch file cannot be read or parsed, the log file
// cannot be opened, or projectDir cannot be made absolute.
func ApplyPatch(patchPath, projectDir string, opts Options) (*Report, error) {
	data, err := os.ReadFile(patchPath)
	if err != nil {
		return nil, fmt.Errorf("read patch file: %w", err)
	}

	plan, err := patchfile.Parse(data)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger, err := applog.New(opts.LogPath, runID, opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer logger.Close()

	var modCount int
	for _, fc := range plan.Changes {
		modCount += len(fc.Modifications)
	}
	logger.PatchParsed(plan.PatchID, len(plan.Changes), modCount)

	absProjectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	rep, runErr := engine.Run(plan, engine.Options{
		ProjectDir:        absProjectDir,
		DryRun:            opts.DryRun,
		Force:             opts.Force,
		CreateFailureCase: opts.CreateFailureCase,
		FailureReportPath: opts.FailureReportPath,
	}, logger)
	rep.RunID = runID
	return rep, runErr
}
