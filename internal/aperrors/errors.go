// Package aperrors defines the stable error taxonomy returned by the patch
// engine. Every failure that can reach a caller of apcore.ApplyPatch carries
// one of the Code constants below, plus a human message and an optional
// context map that the report renderer and fuzzy-suggestion layer attach
// diagnostic details to.
package aperrors

import (
	"errors"
	"fmt"
)

// Code is a stable, externally visible error classification. Callers should
// match on Code rather than on message text.
type Code string

const (
	CodeInvalidPatchFile    Code = "INVALID_PATCH_FILE"
	CodeInvalidModification Code = "INVALID_MODIFICATION"
	CodeInvalidFilePath     Code = "INVALID_FILE_PATH"
	CodeFileNotFound        Code = "FILE_NOT_FOUND"
	CodeFileExists          Code = "FILE_EXISTS"
	CodeAnchorNotFound      Code = "ANCHOR_NOT_FOUND"
	CodeAmbiguousAnchor     Code = "AMBIGUOUS_ANCHOR"
	CodeSnippetNotFound     Code = "SNIPPET_NOT_FOUND"
	CodeEndSnippetNotFound  Code = "END_SNIPPET_NOT_FOUND"
	CodeAmbiguousMatch      Code = "AMBIGUOUS_MATCH"
	CodeFileWriteError      Code = "FILE_WRITE_ERROR"
	CodeAfailedExists       Code = "AFAILED_EXISTS"
	CodeAllChangesFailed    Code = "ALL_CHANGES_FAILED"
)

// Error is the concrete error type carried through the engine. It satisfies
// the error interface and the JSONError-style Report() method the teacher's
// tools.JSONError interface also exposes, so the report package can render it
// without a type switch on the underlying cause.
type Error struct {
	Code    Code
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error with an already-formatted message.
func New(code Code, message string, context map[string]any) *Error {
	return &Error{Code: code, Message: message, Context: context}
}

// Newf builds an Error with a printf-style message.
func Newf(code Code, context map[string]any, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Context: context}
}

// Report renders the structured error body consumed by internal/report.
func (e *Error) Report() map[string]any {
	m := map[string]any{
		"code":    string(e.Code),
		"message": e.Message,
	}
	if len(e.Context) > 0 {
		m["context"] = e.Context
	}
	return m
}

// As is a thin wrapper around errors.As for the common case of pulling an
// *Error out of a possibly-wrapped error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
