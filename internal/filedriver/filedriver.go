// Package filedriver is the File Driver component: line-ending detection,
// realpath-based path confinement, and the atomic write plan. It generalises
// edit_common.go's WriteFileAtomic and path_utils.go's
// NormalizeAndValidatePath from "outside workspace is a config-driven
// permission question" to spec's hard rejection of any path that escapes the
// project directory.
package filedriver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kvit-s/apcore/internal/aperrors"
	"github.com/kvit-s/apcore/internal/patchfile"
)

// ValidatePath resolves relPath against projectDir and rejects it unless the
// resolved path lies strictly inside the resolved project directory. The
// returned path is the unresolved join of projectDir and relPath — the path
// actual I/O should use — not the realpath used only for the safety check.
func ValidatePath(projectDir, relPath string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", aperrors.New(aperrors.CodeInvalidFilePath, "file path must not be empty", nil)
	}

	realProjectDir, err := realPath(projectDir)
	if err != nil {
		return "", aperrors.Newf(aperrors.CodeInvalidFilePath, nil, "cannot resolve project directory: %v", err)
	}

	candidate := filepath.Join(projectDir, relPath)
	realCandidate, err := realPath(candidate)
	if err != nil {
		return "", aperrors.Newf(aperrors.CodeInvalidFilePath, map[string]any{"file_path": relPath}, "cannot resolve file path: %v", err)
	}

	prefix := realProjectDir + string(filepath.Separator)
	if !strings.HasPrefix(realCandidate, prefix) {
		return "", aperrors.New(aperrors.CodeInvalidFilePath, "file path escapes the project directory",
			map[string]any{"file_path": relPath})
	}
	return candidate, nil
}

// realPath resolves symlinks the way os.path.realpath does, tolerating paths
// that don't exist yet (a new file's parent directories must exist and
// resolve, but the file itself need not).
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	dir := filepath.Dir(abs)
	if dir == abs {
		return abs, nil
	}
	resolvedDir, dirErr := realPath(dir)
	if dirErr != nil {
		return "", dirErr
	}
	return filepath.Join(resolvedDir, filepath.Base(abs)), nil
}

// DetectNewline scans the first 1 KiB of the file at fullPath for a line
// ending style. It returns NewlineUnspecified (no error) for a file that
// doesn't exist or carries no newline in that window; callers fall back to
// the host default in that case.
func DetectNewline(fullPath string) (patchfile.Newline, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return patchfile.NewlineUnspecified, nil
		}
		return patchfile.NewlineUnspecified, err
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return patchfile.NewlineUnspecified, err
	}
	chunk := buf[:n]

	switch {
	case bytes.Contains(chunk, []byte("\r\n")):
		return patchfile.NewlineCRLF, nil
	case bytes.Contains(chunk, []byte("\n")):
		return patchfile.NewlineLF, nil
	case bytes.Contains(chunk, []byte("\r")):
		return patchfile.NewlineCR, nil
	default:
		return patchfile.NewlineUnspecified, nil
	}
}

// HostDefaultNewline is the line-ending style used when a file is newly
// created and carries no explicit LF/CRLF/CR directive in its patch.
func HostDefaultNewline() patchfile.Newline {
	if os.PathSeparator == '\\' {
		return patchfile.NewlineCRLF
	}
	return patchfile.NewlineLF
}

// ReadFile reads fullPath and translates CRLF/CR line endings to LF, the
// universal-newline form every other component operates on. exists is false,
// with no error, when the file is simply absent.
func ReadFile(fullPath string) (content string, raw []byte, exists bool, err error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, false, nil
		}
		return "", nil, false, err
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s, data, true, nil
}

// Denormalize renders an LF-joined working buffer back to disk form: each
// line has trailing space/tab stripped (the no-trailing-whitespace
// invariant), then lines are rejoined with newline's literal terminator.
func Denormalize(buffer string, newline patchfile.Newline) []byte {
	lines := strings.Split(buffer, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return []byte(strings.Join(lines, newline.Bytes()))
}

// Plan is one file's resolved write, omitted entirely by BuildPlan when the
// final content is byte-identical to what's already on disk.
type Plan struct {
	RelPath  string
	FullPath string
	Content  []byte
	IsNew    bool
}

// BuildPlan denormalizes finalBuffer and compares it against the file's
// original on-disk bytes, returning (nil, false) when nothing changed so the
// commit phase can omit unchanged files from its write set.
func BuildPlan(relPath, fullPath, finalBuffer string, newline patchfile.Newline, existed bool, originalRaw []byte) (*Plan, bool) {
	finalBytes := Denormalize(finalBuffer, newline)
	if existed && bytes.Equal(finalBytes, originalRaw) {
		return nil, false
	}
	return &Plan{RelPath: relPath, FullPath: fullPath, Content: finalBytes, IsNew: !existed}, true
}

// CommitAll atomically writes every plan (temp file + rename), grounded on
// edit_common.go's WriteFileAtomic.
func CommitAll(plans []*Plan) error {
	for _, p := range plans {
		if err := writeAtomic(p.FullPath, p.Content, p.IsNew); err != nil {
			return aperrors.Newf(aperrors.CodeFileWriteError, map[string]any{"file_path": p.RelPath}, "%v", err)
		}
	}
	return nil
}

func writeAtomic(fullPath string, content []byte, isNew bool) error {
	dir := filepath.Dir(fullPath)
	if isNew {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".apcore-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if info, statErr := os.Stat(fullPath); statErr == nil {
		_ = os.Chmod(tmpPath, info.Mode())
	} else {
		_ = os.Chmod(tmpPath, 0o644)
	}
	return os.Rename(tmpPath, fullPath)
}
