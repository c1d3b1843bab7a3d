// Command apcore is a thin single-shot wrapper around apcore.ApplyPatch: it
// parses flags, optionally loads a YAML config, applies one patch file, and
// prints a report. It is a worked example of calling the library, not the
// richer interactive front end (session management, a REPL, benchmarking)
// that a full coding-agent CLI would layer on top.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kvit-s/apcore"
	"github.com/kvit-s/apcore/internal/config"
	"github.com/kvit-s/apcore/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an apcore.yaml config file")
	projectDir := flag.String("dir", ".", "project directory the patch applies against")
	dryRun := flag.Bool("dry-run", false, "resolve and validate without writing patched files")
	force := flag.Bool("force", false, "apply as many files as possible; write failures to afailed.ap")
	createFailureCase := flag.Bool("create-failure-case", false, "also dump a JSON diagnostic log for each failure")
	failureReportPath := flag.String("failure-report-path", "", "override where the force-mode replay log is written")
	jsonReport := flag.Bool("json", false, "print the report as JSON instead of colorized text")
	logPath := flag.String("log", "", "structured log file (disabled when empty)")
	debug := flag.Bool("debug", false, "use a readable console log encoding instead of JSON")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: apcore [flags] <patch-file>")
		return 2
	}
	patchPath := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "apcore: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	opts := apcore.Options{
		DryRun:            *dryRun,
		Force:             *force || cfg.Engine.Force,
		CreateFailureCase: *createFailureCase || cfg.Engine.CreateFailureCase,
		FailureReportPath: firstNonEmpty(*failureReportPath, cfg.Engine.FailureReportPath),
		LogPath:           firstNonEmpty(*logPath, cfg.Logging.Path),
		Debug:             *debug || cfg.Logging.Development,
	}

	rep, err := apcore.ApplyPatch(patchPath, *projectDir, opts)
	if rep == nil {
		fmt.Fprintf(os.Stderr, "apcore: %v\n", err)
		return 1
	}

	useJSON := *jsonReport || cfg.Report.JSON
	if useJSON {
		_ = report.WriteJSON(os.Stdout, rep)
	} else {
		report.WriteHuman(os.Stdout, rep, cfg.Report.Color && !useJSON)
	}

	if err != nil || !rep.Success {
		return 1
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
