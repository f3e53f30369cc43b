// Package diagnostic provides error reporting for the GLSL toolchain.
//
// Every failure the core can produce is one of three typed errors
// (SyntaxError, TypeError, UnsupportedConstructError), each carrying the byte
// offset of the construct it refers to. The driver turns them into
// Diagnostics and formats them with source context and a caret line.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error aborts the file.
	Error Severity = iota
	// Warning is a non-blocking issue.
	Warning
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Range represents a range in source code.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Message  string
	Range    Range
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)
}

// DiagnosticCode identifies the error kind.
type DiagnosticCode string

const (
	CodeSyntax      DiagnosticCode = "E0001"
	CodeType        DiagnosticCode = "E0200"
	CodeUnsupported DiagnosticCode = "E0300"
	CodeInternal    DiagnosticCode = "E0900"
)

// DiagnosticList collects diagnostics for one source file.
type DiagnosticList struct {
	diagnostics []Diagnostic
	lineIndex   *LineIndex
	source      string
	hasErrors   bool
}

// NewDiagnosticList creates a new diagnostic list for the given source.
func NewDiagnosticList(source string) *DiagnosticList {
	return &DiagnosticList{
		lineIndex: NewLineIndex(source),
		source:    source,
	}
}

// Add adds a diagnostic to the list.
func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.diagnostics = append(dl.diagnostics, d)
	if d.Severity == Error {
		dl.hasErrors = true
	}
}

// AddError converts err into a diagnostic. Errors from the toolchain keep
// their source position and kind; anything else is reported at offset 0.
func (dl *DiagnosticList) AddError(err error) {
	var se SourceError
	if !errors.As(err, &se) {
		dl.Add(Diagnostic{
			Severity: Error,
			Code:     CodeInternal,
			Message:  err.Error(),
			Range:    dl.MakeRange(0, 0),
		})
		return
	}
	start := se.SourcePos()
	dl.Add(Diagnostic{
		Severity: Error,
		Code:     se.Code(),
		Message:  se.Kind() + ": " + se.Detail(),
		Range:    dl.MakeRange(start, start+se.SourceLen()),
	})
}

// AddWarning adds a warning diagnostic at the given byte offset.
func (dl *DiagnosticList) AddWarning(offset int, message string) {
	dl.Add(Diagnostic{
		Severity: Warning,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// MakePosition converts a byte offset to a Position.
func (dl *DiagnosticList) MakePosition(offset int) Position {
	line, col := dl.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{
		Offset: offset,
		Line:   line + 1, // Convert to 1-based
		Column: col + 1,  // Convert to 1-based
	}
}

// MakeRange converts byte offsets to a Range.
func (dl *DiagnosticList) MakeRange(start, end int) Range {
	if end < start {
		end = start
	}
	return Range{
		Start: dl.MakePosition(start),
		End:   dl.MakePosition(end),
	}
}

// HasErrors returns true if there are any error-level diagnostics.
func (dl *DiagnosticList) HasErrors() bool {
	return dl.hasErrors
}

// Diagnostics returns all collected diagnostics.
func (dl *DiagnosticList) Diagnostics() []Diagnostic {
	return dl.diagnostics
}

// Count returns the total number of diagnostics.
func (dl *DiagnosticList) Count() int {
	return len(dl.diagnostics)
}

// Format formats all diagnostics as a human-readable string, each prefixed
// with name when it is not empty.
func (dl *DiagnosticList) Format(name string) string {
	var sb strings.Builder
	for i := range dl.diagnostics {
		if name != "" {
			sb.WriteString(name)
			sb.WriteByte(':')
		}
		sb.WriteString(dl.FormatDiagnostic(&dl.diagnostics[i]))
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (dl *DiagnosticList) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d:%d: %s: %s\n",
		d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)

	sourceLine := dl.lineIndex.Line(d.Range.Start.Line - 1)
	if sourceLine != "" {
		fmt.Fprintf(&sb, "    %s\n", sourceLine)
		caret := strings.Repeat(" ", d.Range.Start.Column-1+4) + "^"
		if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Column > d.Range.Start.Column+1 {
			caret += strings.Repeat("~", d.Range.End.Column-d.Range.Start.Column-1)
		}
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Format renders err against source in the diagnostic format.
func Format(name, source string, err error) string {
	dl := NewDiagnosticList(source)
	dl.AddError(err)
	return dl.Format(name)
}
