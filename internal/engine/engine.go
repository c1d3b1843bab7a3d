// Package engine is the per-run orchestrator: it reports each pipeline step
// to the run-id tagged logger its caller supplies, and owns the per-file
// mutation loop (read, apply each
// modification in order against a working buffer, build a write plan), and
// force-mode's partial-success bookkeeping. It is the part of the pipeline
// that has no single teacher analogue; it plays the role
// cmd/kvit-coder/main.go's agent loop plays for tool calls, generalised to a
// single synchronous apply_patch call.
package engine

import (
	"github.com/kvit-s/apcore/internal/aperrors"
	"github.com/kvit-s/apcore/internal/applog"
	"github.com/kvit-s/apcore/internal/filedriver"
	"github.com/kvit-s/apcore/internal/mutator"
	"github.com/kvit-s/apcore/internal/patchfile"
	"github.com/kvit-s/apcore/internal/report"
)

// Options controls one Run.
type Options struct {
	ProjectDir        string
	DryRun            bool
	Force             bool
	CreateFailureCase bool
	FailureReportPath string
}

// Run applies plan against Options.ProjectDir and returns the outcome. In
// non-force mode, the first modification that errors aborts the whole run
// with no files written (atomicity). In force mode, files whose
// modifications all succeed are still committed even if other files failed;
// failed FileChanges are written back out as an afailed.ap replay log using
// the same patch_id. When every FileChange fails, Run returns
// ALL_CHANGES_FAILED and writes no afailed.ap.
func Run(plan *patchfile.Plan, opts Options, logger *applog.Logger) (*report.Report, error) {
	rep := &report.Report{PatchID: plan.PatchID}

	if opts.Force {
		if err := filedriver.CheckAfailedAbsent(opts.FailureReportPath); err != nil {
			rep.Error = report.FromError(err)
			return rep, err
		}
	}

	var writePlans []*filedriver.Plan
	var failedChanges []patchfile.FileChange
	var failureDetails []map[string]any
	anyFailure := false

	for _, fc := range plan.Changes {
		fileResult, writePlan, failure := runFile(fc, opts, logger)
		rep.Files = append(rep.Files, fileResult)
		if failure != nil {
			anyFailure = true
			rep.FailedCount++
			failedChanges = append(failedChanges, fc)
			if opts.CreateFailureCase {
				failureDetails = append(failureDetails, map[string]any{
					"file_path": fc.Path,
					"error":     fileResult.Error,
					"patch":     string(patchfile.Serialize(&patchfile.Plan{PatchID: plan.PatchID, Changes: []patchfile.FileChange{fc}})),
				})
			}
			if !opts.Force {
				if opts.CreateFailureCase {
					writeFailureLogs(failureDetails, logger)
				}
				rep.Error = report.FromError(failure)
				logger.RunFailed("apply", failure)
				return rep, failure
			}
			continue
		}
		if writePlan != nil {
			writePlans = append(writePlans, writePlan)
		}
	}

	if opts.CreateFailureCase {
		writeFailureLogs(failureDetails, logger)
	}

	if len(plan.Changes) > 0 && len(failedChanges) == len(plan.Changes) {
		err := aperrors.New(aperrors.CodeAllChangesFailed, "every file in the patch failed to apply", nil)
		rep.Error = report.FromError(err)
		return rep, err
	}

	if opts.DryRun {
		rep.Success = !anyFailure
		return rep, nil
	}

	if len(writePlans) > 0 {
		if err := filedriver.CommitAll(writePlans); err != nil {
			rep.Error = report.FromError(err)
			logger.RunFailed("commit", err)
			return rep, err
		}
		var paths []string
		for _, p := range writePlans {
			paths = append(paths, p.RelPath)
		}
		logger.FilesCommitted(paths)
	}

	if anyFailure {
		if err := filedriver.WriteAfailed(opts.FailureReportPath, plan.PatchID, failedChanges); err != nil {
			rep.Error = report.FromError(err)
			return rep, err
		}
		reportPath := opts.FailureReportPath
		if reportPath == "" {
			reportPath = "afailed.ap"
		}
		rep.FailureCase = reportPath
	}

	rep.Success = !anyFailure
	return rep, nil
}

// writeFailureLogs dumps one diagnostic log per failed file: a single
// failure gets the unindexed afailed.log, multiple failures each get their
// own afailed.<n>.log, matching filedriver.WriteFailureLog's idx contract.
func writeFailureLogs(details []map[string]any, logger *applog.Logger) {
	for i, detail := range details {
		idx := i
		if len(details) == 1 {
			idx = -1
		}
		if err := filedriver.WriteFailureLog(idx, detail); err != nil {
			logger.RunFailed("failure-log", err)
		}
	}
}

// hasCreateFile reports whether mods contains a CREATE_FILE modification,
// the one case where a missing target file is not itself FILE_NOT_FOUND.
func hasCreateFile(mods []patchfile.Modification) bool {
	for _, m := range mods {
		if m.Action == patchfile.ActionCreateFile {
			return true
		}
	}
	return false
}

// runFile applies every modification in fc against its working buffer in
// order, returning the report entry, the write plan to commit (nil if
// unchanged or failed), and the first error encountered (nil on success).
func runFile(fc patchfile.FileChange, opts Options, logger *applog.Logger) (report.FileResult, *filedriver.Plan, error) {
	result := report.FileResult{Path: fc.Path}

	fullPath, err := filedriver.ValidatePath(opts.ProjectDir, fc.Path)
	if err != nil {
		result.Status = "failed"
		result.Error = report.FromError(err)
		logger.ModificationFailed(fc.Path, "", 0, err)
		return result, nil, err
	}

	buffer, raw, existedOriginally, err := filedriver.ReadFile(fullPath)
	if err != nil {
		result.Status = "failed"
		result.Error = report.FromError(err)
		return result, nil, err
	}
	originalBuffer := buffer
	exists := existedOriginally

	if !existedOriginally && !hasCreateFile(fc.Modifications) {
		notFound := aperrors.New(aperrors.CodeFileNotFound, "target file does not exist and the patch has no CREATE_FILE modification", map[string]any{"file_path": fc.Path})
		result.Status = "failed"
		result.Error = report.FromError(notFound)
		logger.ModificationFailed(fc.Path, "", 0, notFound)
		return result, nil, notFound
	}

	newline := fc.Newline
	if newline == patchfile.NewlineUnspecified {
		if detected, derr := filedriver.DetectNewline(fullPath); derr == nil && detected != patchfile.NewlineUnspecified {
			newline = detected
		} else {
			newline = filedriver.HostDefaultNewline()
		}
	}

	cursor := 0
	for i := range fc.Modifications {
		mod := &fc.Modifications[i]
		outcome, applyErr := mutator.Apply(buffer, exists, mod, cursor)
		if applyErr != nil {
			result.Status = "failed"
			result.Error = report.FromError(applyErr)
			logger.ModificationFailed(fc.Path, mod.Action.String(), i, applyErr)
			return result, nil, applyErr
		}
		buffer = outcome.Buffer
		if outcome.CursorSet {
			cursor = outcome.Cursor
		}
		if mod.Action == patchfile.ActionCreateFile {
			exists = true
		}
		if outcome.Skipped {
			logger.ModificationSkipped(fc.Path, mod.Action.String(), i, "idempotent")
		} else {
			logger.ModificationApplied(fc.Path, mod.Action.String(), i)
		}
	}

	writePlan, changed := filedriver.BuildPlan(fc.Path, fullPath, buffer, newline, existedOriginally, raw)
	if !changed {
		result.Status = "unchanged"
		return result, nil, nil
	}

	result.Status = "written"
	if diff, derr := report.Diff(fc.Path, originalBuffer, buffer); derr == nil {
		result.Diff = diff
	}
	return result, writePlan, nil
}
