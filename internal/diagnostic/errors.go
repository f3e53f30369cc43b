package diagnostic

import "fmt"

// SourceError is implemented by every error that refers to a position in
// the source being transformed.
type SourceError interface {
	error
	SourcePos() int
	SourceLen() int
	Kind() string
	Detail() string
	Code() DiagnosticCode
}

// SyntaxError reports input the grammar cannot match.
type SyntaxError struct {
	Message string
	Pos     int // byte offset
	Line    int // 1-based
	Column  int // 1-based
	Span    string
}

func (e *SyntaxError) Error() string {
	if e.Span != "" {
		return fmt.Sprintf("%d:%d: syntax error: %s at %q", e.Line, e.Column, e.Message, e.Span)
	}
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Column, e.Message)
}

func (e *SyntaxError) SourcePos() int       { return e.Pos }
func (e *SyntaxError) SourceLen() int       { return len(e.Span) }
func (e *SyntaxError) Kind() string         { return "syntax error" }
func (e *SyntaxError) Detail() string       { return e.Message }
func (e *SyntaxError) Code() DiagnosticCode { return CodeSyntax }

// TypeError reports a reference, call or attribute whose type cannot be
// resolved.
type TypeError struct {
	Message string
	Pos     int
}

// NewTypeError creates a TypeError at pos.
func NewTypeError(pos int, format string, args ...any) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (e *TypeError) Error() string {
	return "type error: " + e.Message
}

func (e *TypeError) SourcePos() int       { return e.Pos }
func (e *TypeError) SourceLen() int       { return 0 }
func (e *TypeError) Kind() string         { return "type error" }
func (e *TypeError) Detail() string       { return e.Message }
func (e *TypeError) Code() DiagnosticCode { return CodeType }

// UnsupportedConstructError reports a construct a pass recognizes but whose
// rules do not cover it.
type UnsupportedConstructError struct {
	Construct string // what was rejected, e.g. "cross" or "if statement"
	Reason    string // optional explanation
	Pos       int
}

// Unsupported creates an UnsupportedConstructError at pos.
func Unsupported(pos int, construct, reason string) *UnsupportedConstructError {
	return &UnsupportedConstructError{Construct: construct, Reason: reason, Pos: pos}
}

func (e *UnsupportedConstructError) Error() string {
	return "unsupported construct: " + e.Detail()
}

func (e *UnsupportedConstructError) Detail() string {
	if e.Reason == "" {
		return e.Construct
	}
	return e.Construct + " (" + e.Reason + ")"
}

func (e *UnsupportedConstructError) SourcePos() int       { return e.Pos }
func (e *UnsupportedConstructError) SourceLen() int       { return 0 }
func (e *UnsupportedConstructError) Kind() string         { return "unsupported construct" }
func (e *UnsupportedConstructError) Code() DiagnosticCode { return CodeUnsupported }
