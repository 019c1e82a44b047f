// Package diagnostics defines the build-time error values produced while
// processing declarations and expanding call sites. Every diagnostic is
// fatal to the declaration or call site that produced it; nothing is
// retried and nothing survives into generated code.
package diagnostics

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a diagnostic category.
type ErrorCode string

const (
	// ErrD001: a required parameter appears after a defaulted one.
	ErrD001 ErrorCode = "D001"
	// ErrD002: the annotated item has no parameters or fields.
	ErrD002 ErrorCode = "D002"
	// ErrD003: an aggregate field is less visible than the aggregate itself.
	ErrD003 ErrorCode = "D003"
	// ErrD004: non-private visibility declared without a scope token.
	ErrD004 ErrorCode = "D004"
	// ErrC001: a call site matches no compiled call form.
	ErrC001 ErrorCode = "C001"
)

// messages holds the format template for each code. Extra arguments passed
// to NewError are substituted in order.
var messages = map[ErrorCode]string{
	ErrD001: "required parameter %q follows a defaulted parameter",
	ErrD002: "item %q has no parameters or fields to generate call forms for",
	ErrD003: "field %q is less visible than its enclosing %s %q",
	ErrD004: "item %q is %s but no scope was supplied",
	ErrC001: "no rule matched: %s",
}

// Position locates a diagnostic in its source input. A zero Position is
// valid and prints without a location prefix.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" && p.Line == 0 {
		return ""
	}
	if p.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// DiagnosticError is a positioned, coded build-time error.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     Position
	Message string
}

// NewError builds a DiagnosticError from a code, a position and the
// template arguments for the code's message.
func NewError(code ErrorCode, pos Position, args ...interface{}) *DiagnosticError {
	tmpl, ok := messages[code]
	if !ok {
		tmpl = "unknown diagnostic"
	}
	return &DiagnosticError{
		Code:    code,
		Pos:     pos,
		Message: fmt.Sprintf(tmpl, args...),
	}
}

func (e *DiagnosticError) Error() string {
	if loc := e.Pos.String(); loc != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, loc, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns "" when err carries no diagnostic code.
func CodeOf(err error) ErrorCode {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
