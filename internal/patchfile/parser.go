package patchfile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kvit-s/apcore/internal/aperrors"
)

var headerPattern = regexp.MustCompile(`^([a-z0-9]{8}) AP 3\.0\s*$`)

// openTarget tells flush() where an open value key's accumulated lines go
// once the next directive or EOF closes it.
type openTarget int

const (
	targetNone openTarget = iota
	targetPath
	targetAnchor
	targetSnippet
	targetContent
	targetEndSnippet
)

// parser walks a patch file line by line, dispatching on directive keywords
// the same way edit_patch.go's parsePatch walks V4A markers: a small amount
// of mutable cursor state (current file, current modification, open value
// key) updated on every directive and flushed on every transition.
type parser struct {
	patchID string
	prefix  string

	result []FileChange

	currentFile *FileChange
	currentMod  *Modification

	openKey  openTarget
	valueBuf []string
}

// Parse turns raw patch file bytes into a Plan, or returns an
// *aperrors.Error with Code CodeInvalidPatchFile / CodeInvalidModification
// describing the first malformed construct encountered.
func Parse(data []byte) (*Plan, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	headerIdx := -1
	var patchID string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m := headerPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, aperrors.Newf(aperrors.CodeInvalidPatchFile, nil,
				"line %d: expected a header of the form \"<patch_id> AP 3.0\", got %q", i+1, line)
		}
		patchID = m[1]
		headerIdx = i
		break
	}
	if headerIdx == -1 {
		return nil, aperrors.New(aperrors.CodeInvalidPatchFile, "missing AP 3.0 header", nil)
	}

	p := &parser{patchID: patchID, prefix: patchID + " "}
	for i := headerIdx + 1; i < len(lines); i++ {
		if err := p.consume(lines[i], i+1); err != nil {
			return nil, err
		}
	}
	eof := len(lines)
	if err := p.flush(eof); err != nil {
		return nil, err
	}
	if err := p.finalizeMod(eof); err != nil {
		return nil, err
	}
	p.finalizeFile()

	return &Plan{PatchID: patchID, Changes: p.result}, nil
}

func (p *parser) consume(line string, lineNo int) error {
	if !strings.HasPrefix(line, p.prefix) {
		return p.appendContent(line, lineNo)
	}

	rest := line[len(p.prefix):]
	keyword := rest
	arg := ""
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		keyword = rest[:idx]
		arg = strings.TrimSpace(rest[idx+1:])
	}

	switch keyword {
	case "FILE":
		return p.openFile(arg, lineNo, false)
	case "CREATE_FILE":
		return p.openFile(arg, lineNo, true)
	case "REPLACE", "INSERT_AFTER", "INSERT_BEFORE", "DELETE":
		if arg != "" {
			return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s takes no argument", lineNo, keyword)
		}
		return p.openAction(keyword, lineNo)
	case "path", "snippet", "anchor", "content", "end_snippet":
		if arg != "" {
			return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s takes no argument", lineNo, keyword)
		}
		return p.openValue(keyword, lineNo)
	case "LF", "CRLF", "CR":
		if arg != "" {
			return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s takes no argument", lineNo, keyword)
		}
		return p.setNewline(keyword, lineNo)
	case "include_leading_blank_lines", "include_trailing_blank_lines":
		return p.setIntArg(keyword, arg, lineNo)
	default:
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: unknown directive %q", lineNo, keyword)
	}
}

func (p *parser) appendContent(line string, lineNo int) error {
	if p.openKey == targetNone {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: content outside any open value", lineNo)
	}
	p.valueBuf = append(p.valueBuf, line)
	return nil
}

// flush trims leading/trailing blank lines from the accumulated value buffer
// and assigns it to whichever target the currently open key names. lineNo is
// unused: flush never fails once the key was legally opened.
func (p *parser) flush(lineNo int) error {
	_ = lineNo
	if p.openKey == targetNone {
		return nil
	}
	value := joinTrimmed(p.valueBuf)
	switch p.openKey {
	case targetPath:
		p.currentFile.Path = value
	case targetAnchor:
		p.currentMod.Anchor = value
	case targetSnippet:
		p.currentMod.Snippet = value
	case targetContent:
		p.currentMod.Content = value
	case targetEndSnippet:
		p.currentMod.EndSnippet = value
		p.currentMod.HasEndSnippet = true
	}
	p.openKey = targetNone
	p.valueBuf = nil
	return nil
}

func joinTrimmed(lines []string) string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func (p *parser) openFile(arg string, lineNo int, create bool) error {
	if err := p.flush(lineNo); err != nil {
		return err
	}
	if err := p.finalizeMod(lineNo); err != nil {
		return err
	}
	p.finalizeFile()

	p.currentFile = &FileChange{}
	if arg != "" {
		nl, ok := ParseNewline(arg)
		if !ok {
			return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: unrecognised newline argument %q", lineNo, arg)
		}
		p.currentFile.Newline = nl
	}
	if create {
		p.currentMod = &Modification{Action: ActionCreateFile}
	} else {
		p.currentMod = nil
	}
	p.openKey = targetPath
	return nil
}

func (p *parser) openAction(keyword string, lineNo int) error {
	if err := p.flush(lineNo); err != nil {
		return err
	}
	if p.currentFile == nil {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s before any FILE", lineNo, keyword)
	}
	if err := p.finalizeMod(lineNo); err != nil {
		return err
	}
	var action Action
	switch keyword {
	case "REPLACE":
		action = ActionReplace
	case "INSERT_AFTER":
		action = ActionInsertAfter
	case "INSERT_BEFORE":
		action = ActionInsertBefore
	case "DELETE":
		action = ActionDelete
	}
	p.currentMod = &Modification{Action: action}
	p.openKey = targetNone
	return nil
}

func (p *parser) openValue(keyword string, lineNo int) error {
	if err := p.flush(lineNo); err != nil {
		return err
	}
	if keyword == "path" {
		if p.currentFile == nil {
			return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: path outside a FILE block", lineNo)
		}
		p.openKey = targetPath
		return nil
	}
	if p.currentMod == nil {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s outside a modification", lineNo, keyword)
	}
	switch keyword {
	case "anchor":
		p.openKey = targetAnchor
	case "snippet":
		p.openKey = targetSnippet
	case "content":
		p.openKey = targetContent
	case "end_snippet":
		p.openKey = targetEndSnippet
	}
	return nil
}

func (p *parser) setNewline(keyword string, lineNo int) error {
	if err := p.flush(lineNo); err != nil {
		return err
	}
	if p.currentFile == nil {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s outside a FILE block", lineNo, keyword)
	}
	nl, _ := ParseNewline(keyword)
	p.currentFile.Newline = nl
	p.openKey = targetNone
	return nil
}

func (p *parser) setIntArg(keyword, arg string, lineNo int) error {
	if err := p.flush(lineNo); err != nil {
		return err
	}
	if p.currentMod == nil {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s outside a modification", lineNo, keyword)
	}
	if arg == "" {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s requires an integer argument", lineNo, keyword)
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return aperrors.Newf(aperrors.CodeInvalidPatchFile, nil, "line %d: %s requires a non-negative integer, got %q", lineNo, keyword, arg)
	}
	switch keyword {
	case "include_leading_blank_lines":
		p.currentMod.IncludeLeadingBlankLines = n
	case "include_trailing_blank_lines":
		p.currentMod.IncludeTrailingBlankLines = n
	}
	p.openKey = targetNone
	return nil
}

// finalizeMod appends the in-progress modification to the current file (once
// it is validated) and clears it. It is a no-op when there is no open
// modification.
func (p *parser) finalizeMod(lineNo int) error {
	if p.currentMod == nil {
		return nil
	}
	if err := validateModification(p.currentMod, lineNo); err != nil {
		return err
	}
	p.currentFile.Modifications = append(p.currentFile.Modifications, *p.currentMod)
	p.currentMod = nil
	return nil
}

func (p *parser) finalizeFile() {
	if p.currentFile == nil {
		return
	}
	p.result = append(p.result, *p.currentFile)
	p.currentFile = nil
}

func validateModification(m *Modification, lineNo int) error {
	switch m.Action {
	case ActionCreateFile:
		if strings.TrimSpace(m.Content) == "" {
			return aperrors.Newf(aperrors.CodeInvalidModification, map[string]any{"line": lineNo},
				"CREATE_FILE requires non-empty content")
		}
	case ActionInsertAfter, ActionInsertBefore:
		if strings.TrimSpace(m.Snippet) == "" {
			return aperrors.Newf(aperrors.CodeInvalidModification, map[string]any{"line": lineNo},
				"%s requires a snippet", m.Action)
		}
		if m.HasEndSnippet {
			return aperrors.Newf(aperrors.CodeInvalidModification, map[string]any{"line": lineNo},
				"end_snippet is not allowed for %s", m.Action)
		}
	case ActionReplace, ActionDelete:
		if strings.TrimSpace(m.Snippet) == "" {
			return aperrors.Newf(aperrors.CodeInvalidModification, map[string]any{"line": lineNo},
				"%s requires a snippet", m.Action)
		}
	}
	return nil
}
